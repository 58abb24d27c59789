package identity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"philcali.me/groceries/internal/identity"
)

func TestWatcher(t *testing.T) {
	watcher := identity.NewWatcher()
	var seen []*identity.User
	unsubscribe := watcher.Subscribe(func(user *identity.User) {
		seen = append(seen, user)
	})

	t.Run("NothingBeforeResolution", func(t *testing.T) {
		assert.False(t, watcher.Resolved())
		assert.Empty(t, seen)
	})

	t.Run("GuestResolutionFires", func(t *testing.T) {
		assert.True(t, watcher.Publish(nil))
		assert.True(t, watcher.Resolved())
		assert.Equal(t, []*identity.User{nil}, seen)
		assert.False(t, watcher.Publish(nil))
		assert.Len(t, seen, 1)
	})

	t.Run("OncePerTransition", func(t *testing.T) {
		assert.True(t, watcher.Publish(&identity.User{ID: "a"}))
		assert.False(t, watcher.Publish(&identity.User{ID: "a", Email: "a@example.com"}))
		assert.Equal(t, "a@example.com", watcher.Current().Email)
		assert.True(t, watcher.Publish(&identity.User{ID: "b"}))
		assert.True(t, watcher.Publish(nil))
		assert.Len(t, seen, 4)
		assert.Nil(t, seen[3])
	})

	t.Run("LateSubscriberGetsCurrentState", func(t *testing.T) {
		watcher.Publish(&identity.User{ID: "c"})
		var late *identity.User
		calls := 0
		watcher.Subscribe(func(user *identity.User) {
			calls++
			late = user
		})
		assert.Equal(t, 1, calls)
		assert.Equal(t, "c", late.ID)
	})

	t.Run("Unsubscribe", func(t *testing.T) {
		count := len(seen)
		unsubscribe()
		watcher.Publish(&identity.User{ID: "d"})
		assert.Len(t, seen, count)
	})
}
