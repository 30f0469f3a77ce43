package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/flipsidefm/flipside/internal/serviceerr"
)

var _ = Store(&ValkeyStore{})

type ValkeyStore struct {
	valkey valkey.Client
	prefix string
}

func NewValkeyStore(valkeyClient valkey.Client, prefix string) *ValkeyStore {
	return &ValkeyStore{
		valkey: valkeyClient,
		prefix: strings.TrimSuffix(prefix, ":"),
	}
}

func (s *ValkeyStore) key(key string) string {
	return fmt.Sprintf("%s:cache:%s", s.prefix, key)
}

func (s *ValkeyStore) Get(ctx context.Context, key string) ([]byte, error) {
	bytes, err := s.valkey.Do(ctx, s.valkey.B().Get().Key(s.key(key)).Build()).AsBytes()
	if err != nil {
		valkeyErr, ok := valkey.IsValkeyErr(err)
		if ok && valkeyErr.IsNil() {
			return nil, errors.Join(valkeyErr, serviceerr.ErrNotFound)
		}

		return nil, fmt.Errorf("executing get command: %w", err)
	}

	return bytes, nil
}

func (s *ValkeyStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	cmd := s.valkey.B().Set().Key(s.key(key)).Value(valkey.BinaryString(value)).Ex(ttl).Build()
	if err := s.valkey.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("executing set command: %w", err)
	}

	return nil
}

func (s *ValkeyStore) Delete(ctx context.Context, key string) error {
	if err := s.valkey.Do(ctx, s.valkey.B().Del().Key(s.key(key)).Build()).Error(); err != nil {
		return fmt.Errorf("executing del command: %w", err)
	}

	return nil
}
