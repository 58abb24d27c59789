// Package snapshot keeps the last session state between launches of a client.
// The state is stored verbatim and read back as is.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/redis/go-redis/v9"
	"philcali.me/groceries/internal/shopping"
)

const Key = "shopping-state"

type Slot interface {
	// Load reports false when nothing was saved yet.
	Load(ctx context.Context) (shopping.State, bool, error)
	Save(ctx context.Context, state shopping.State) error
	Clear(ctx context.Context) error
}

func decode(raw []byte) (shopping.State, error) {
	var state shopping.State
	if err := json.Unmarshal(raw, &state); err != nil {
		return shopping.State{}, fmt.Errorf("decoding %s: %w", Key, err)
	}
	if state.ShoppingList == nil {
		state.ShoppingList = []shopping.Item{}
	}
	if state.PurchaseHistory == nil {
		state.PurchaseHistory = []shopping.Purchase{}
	}
	return state, nil
}

type FileSlot struct {
	Path string
}

func NewFileSlot(dir string) *FileSlot {
	return &FileSlot{
		Path: filepath.Join(dir, Key+".json"),
	}
}

func (f *FileSlot) Load(ctx context.Context) (shopping.State, bool, error) {
	raw, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return shopping.State{}, false, nil
	}
	if err != nil {
		return shopping.State{}, false, fmt.Errorf("reading %s: %w", f.Path, err)
	}
	state, err := decode(raw)
	return state, err == nil, err
}

// Save writes through a temporary file so a crash never leaves half a state.
func (f *FileSlot) Save(ctx context.Context, state shopping.State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(f.Path), err)
	}
	tmp := f.Path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	return os.Rename(tmp, f.Path)
}

func (f *FileSlot) Clear(ctx context.Context) error {
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// RedisSlot keeps the state under one key, namespaced per client.
type RedisSlot struct {
	Client redis.Cmdable
	Key    string
}

func NewRedisSlot(client redis.Cmdable, namespace string) *RedisSlot {
	key := Key
	if namespace != "" {
		key = namespace + ":" + Key
	}
	return &RedisSlot{
		Client: client,
		Key:    key,
	}
}

func (r *RedisSlot) Load(ctx context.Context) (shopping.State, bool, error) {
	raw, err := r.Client.Get(ctx, r.Key).Bytes()
	if errors.Is(err, redis.Nil) {
		return shopping.State{}, false, nil
	}
	if err != nil {
		return shopping.State{}, false, fmt.Errorf("reading %s: %w", r.Key, err)
	}
	state, err := decode(raw)
	return state, err == nil, err
}

func (r *RedisSlot) Save(ctx context.Context, state shopping.State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return r.Client.Set(ctx, r.Key, raw, 0).Err()
}

func (r *RedisSlot) Clear(ctx context.Context) error {
	return r.Client.Del(ctx, r.Key).Err()
}
