package events

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/apiref/internal/foundation/errors"
)

type published struct {
	subject string
	data    []byte
}

type fakeConn struct {
	mu         sync.Mutex
	msgs       []published
	publishErr error
	flushErr   error
	closed     bool
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErr != nil {
		return f.publishErr
	}
	f.msgs = append(f.msgs, published{subject, data})
	return nil
}

func (f *fakeConn) FlushWithContext(context.Context) error { return f.flushErr }
func (f *fakeConn) Close()                                 { f.closed = true }

func TestPublishBuild(t *testing.T) {
	fc := &fakeConn{}
	p := newNATSPublisher(fc, "apiref.builds")

	err := p.PublishBuild(context.Background(), BuildEvent{
		Type:         TypeBuildCompleted,
		BuildID:      "b1",
		Documents:    3,
		StaleAnchors: []StaleAnchor{{ID: "x", Title: "X"}},
	})
	require.NoError(t, err)
	require.Len(t, fc.msgs, 1)
	assert.Equal(t, "apiref.builds.build.completed", fc.msgs[0].subject)

	var got BuildEvent
	require.NoError(t, json.Unmarshal(fc.msgs[0].data, &got))
	assert.Equal(t, "b1", got.BuildID)
	assert.Equal(t, 3, got.Documents)
	assert.False(t, got.Timestamp.IsZero())
	assert.Equal(t, []StaleAnchor{{ID: "x", Title: "X"}}, got.StaleAnchors)
}

func TestPublishLink_DefaultsType(t *testing.T) {
	fc := &fakeConn{}
	p := newNATSPublisher(fc, "s")
	require.NoError(t, p.PublishLink(context.Background(), LinkEvent{Href: "../../x.mdx"}))
	assert.Equal(t, "s.link.broken", fc.msgs[0].subject)
}

func TestPublish_ErrorsAreClassified(t *testing.T) {
	fc := &fakeConn{publishErr: stderrors.New("nats: connection closed")}
	p := newNATSPublisher(fc, "s")
	err := p.PublishBuild(context.Background(), BuildEvent{Type: TypeBuildFailed})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryEvents))

	fc = &fakeConn{flushErr: context.DeadlineExceeded}
	p = newNATSPublisher(fc, "s")
	err = p.PublishBuild(context.Background(), BuildEvent{Type: TypeBuildFailed})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClose(t *testing.T) {
	fc := &fakeConn{}
	require.NoError(t, newNATSPublisher(fc, "s").Close())
	assert.True(t, fc.closed)
}

func TestNoop(t *testing.T) {
	var p Publisher = Noop{}
	require.NoError(t, p.PublishBuild(context.Background(), BuildEvent{}))
	require.NoError(t, p.PublishLink(context.Background(), LinkEvent{}))
	require.NoError(t, p.Close())
}
