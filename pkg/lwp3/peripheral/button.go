package peripheral

import (
	"context"
	"sync"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/srg/lwp3hub/pkg/lwp3/proto"
)

// Button is the hub's physical push-button. It is not attached to a
// real port: state flows through HubProperties(BUTTON) rather than a
// PortValue stream.
type Button struct {
	sess Session

	mu      sync.Mutex
	nextSub int
	subs    *orderedmap.OrderedMap[int, Callback]
}

// NewButton registers the hub-properties handler backing the
// pseudo-peripheral.
func NewButton(sess Session) *Button {
	b := &Button{sess: sess, subs: orderedmap.New[int, Callback]()}
	sess.AddMessageHandler(proto.KindHubProperties, b.onHubProperties)
	return b
}

func (b *Button) onHubProperties(msg proto.Message) {
	hp, ok := msg.(*proto.HubProperties)
	if !ok || hp.PropertyID != proto.PropertyButton || hp.Operation != proto.OpUpstreamUpdate {
		return
	}
	if len(hp.Parameters) < 1 {
		return
	}
	state := hp.Parameters[0]

	b.mu.Lock()
	snapshot := make([]Callback, 0, b.subs.Len())
	for pair := b.subs.Oldest(); pair != nil; pair = pair.Next() {
		snapshot = append(snapshot, pair.Value)
	}
	b.mu.Unlock()

	for _, cb := range snapshot {
		cb(state)
	}
}

// Subscribe enables BUTTON upstream updates and registers cb.
func (b *Button) Subscribe(ctx context.Context, cb Callback) (int, error) {
	if _, err := b.sess.Send(ctx, proto.NewHubProperties(proto.PropertyButton, proto.OpUpdateEnable)); err != nil {
		return 0, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextSub
	b.nextSub++
	b.subs.Set(id, cb)
	return id, nil
}

// Unsubscribe removes the subscriber with the given id; once no
// subscribers remain, disables BUTTON updates.
func (b *Button) Unsubscribe(ctx context.Context, id int) error {
	b.mu.Lock()
	b.subs.Delete(id)
	empty := b.subs.Len() == 0
	b.mu.Unlock()

	if empty {
		_, err := b.sess.Send(ctx, proto.NewHubProperties(proto.PropertyButton, proto.OpUpdateDisable))
		return err
	}
	return nil
}
