package peripheral

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srg/lwp3hub/pkg/lwp3/proto"
)

// fakeSession is a scriptable peripheral.Session: Send returns whatever
// the test installed via reply/err, recording every request it saw.
type fakeSession struct {
	mu       sync.Mutex
	logger   *logrus.Logger
	reply    proto.Message
	err      error
	requests []proto.Downstream
}

func newFakeSession() *fakeSession {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return &fakeSession{logger: logger}
}

func (s *fakeSession) Send(ctx context.Context, msg proto.Downstream) (proto.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, msg)
	return s.reply, s.err
}
func (s *fakeSession) Logger() *logrus.Logger                                    { return s.logger }
func (s *fakeSession) AddMessageHandler(kind proto.Kind, fn func(proto.Message)) {}
func (s *fakeSession) SystemType() byte                                          { return 0 }

func (s *fakeSession) setReply(m proto.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reply = m
	s.err = nil
}

func TestPeripheral_SetPortModeAcksAndCaches(t *testing.T) {
	sess := newFakeSession()
	p := New(sess, 0, proto.DevTechnicLargeLinearMotor)

	sess.setReply(&proto.PortInputFormatSingle{Port: 0, Mode: 2, UpdateDelta: 5, UpdatesEnabled: true})

	err := p.SetPortMode(context.Background(), 2, true, 5)
	require.NoError(t, err)

	cur := p.CurrentMode()
	assert.Equal(t, byte(2), cur.Mode)
	assert.Equal(t, uint32(5), cur.Delta)
	assert.True(t, cur.Enabled)
}

func TestPeripheral_SetPortModeNoopWhenAlreadyCurrent(t *testing.T) {
	sess := newFakeSession()
	p := New(sess, 0, proto.DevTechnicLargeLinearMotor)
	sess.setReply(&proto.PortInputFormatSingle{Port: 0, Mode: 1, UpdateDelta: 1, UpdatesEnabled: true})

	require.NoError(t, p.SetPortMode(context.Background(), 1, true, 1))
	before := len(sess.requests)

	require.NoError(t, p.SetPortMode(context.Background(), 1, true, 1))
	assert.Equal(t, before, len(sess.requests), "second identical SetPortMode must not send a request")
}

func TestPeripheral_SubscribeRejectsModeConflict(t *testing.T) {
	sess := newFakeSession()
	p := New(sess, 0, proto.DevTechnicLargeLinearMotor)
	sess.setReply(&proto.PortInputFormatSingle{Port: 0, Mode: 1, UpdateDelta: 1, UpdatesEnabled: true})

	_, err := p.Subscribe(context.Background(), func(values ...interface{}) {}, 1, 1)
	require.NoError(t, err)

	_, err = p.Subscribe(context.Background(), func(values ...interface{}) {}, 2, 1)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestPeripheral_UnsubscribeLastDisablesMode(t *testing.T) {
	sess := newFakeSession()
	p := New(sess, 0, proto.DevTechnicLargeLinearMotor)
	sess.setReply(&proto.PortInputFormatSingle{Port: 0, Mode: 1, UpdateDelta: 1, UpdatesEnabled: true})

	id, err := p.Subscribe(context.Background(), func(values ...interface{}) {}, 1, 1)
	require.NoError(t, err)

	sess.setReply(&proto.PortInputFormatSingle{Port: 0, Mode: 1, UpdateDelta: 1, UpdatesEnabled: false})
	require.NoError(t, p.Unsubscribe(context.Background(), id))

	sess.mu.Lock()
	last := sess.requests[len(sess.requests)-1]
	sess.mu.Unlock()
	setup, ok := last.(*proto.PortInputFormatSetupSingle)
	require.True(t, ok)
	assert.False(t, setup.UpdateEnabled)
}

func TestPeripheral_EnqueueValueDeliversToSubscriber(t *testing.T) {
	sess := newFakeSession()
	p := New(sess, 0, proto.DevTechnicLargeLinearMotor)
	p.SetDecoder(func(mode byte, raw []byte) ([]interface{}, error) {
		return []interface{}{raw[0]}, nil
	})

	got := make(chan interface{}, 1)
	p.subMu.Lock()
	p.subs.Set(0, func(values ...interface{}) { got <- values[0] })
	p.subMu.Unlock()

	p.EnqueueValue([]byte{42})

	select {
	case v := <-got:
		assert.Equal(t, byte(42), v)
	case <-time.After(time.Second):
		t.Fatal("subscriber callback never invoked")
	}
}

func TestPeripheral_EnqueueValueDropsNewestWhenFull(t *testing.T) {
	sess := newFakeSession()
	p := New(sess, 0, proto.DevTechnicLargeLinearMotor)

	block := make(chan struct{})
	release := make(chan struct{})
	var calls []byte
	var mu sync.Mutex
	p.SetDecoder(func(mode byte, raw []byte) ([]interface{}, error) {
		mu.Lock()
		calls = append(calls, raw[0])
		mu.Unlock()
		if raw[0] == 1 {
			close(block)
			<-release
		}
		return nil, nil
	})

	p.EnqueueValue([]byte{1})
	<-block // worker is now blocked inside dispatch(1); the slot is free again

	p.EnqueueValue([]byte{2}) // fills the now-empty slot
	p.EnqueueValue([]byte{3}) // slot occupied by 2: dropped, not 2 itself

	close(release)
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []byte{1, 2}, calls, "3 must be dropped in favor of the already-queued 2")
}

func TestPeripheral_CloseStopsWorker(t *testing.T) {
	sess := newFakeSession()
	p := New(sess, 0, proto.DevTechnicLargeLinearMotor)
	p.Close()
	p.Close() // idempotent

	p.EnqueueValue([]byte{1})
	time.Sleep(10 * time.Millisecond)
}

func TestPeripheral_VirtualComposingPorts(t *testing.T) {
	sess := newFakeSession()
	p := NewVirtual(sess, 10, proto.DevTechnicLargeLinearMotor, 0, 1)

	assert.True(t, p.IsVirtual())
	a, b := p.ComposingPorts()
	assert.Equal(t, byte(0), a)
	assert.Equal(t, byte(1), b)
}

func TestPeripheral_OutputSubcommandOffsetForVirtual(t *testing.T) {
	sess := newFakeSession()
	phys := New(sess, 0, proto.DevTechnicLargeLinearMotor)
	assert.Equal(t, byte(0x07), phys.outputSubcommand(0x07))

	virt := NewVirtual(sess, 10, proto.DevTechnicLargeLinearMotor, 0, 1)
	assert.Equal(t, byte(0x08), virt.outputSubcommand(0x07))
}
