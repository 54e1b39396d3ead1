package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/wordlebot/config"
)

func TestLoadOnce(t *testing.T) {
	is := is.New(t)
	var calls atomic.Int32
	load := func(cfg *config.Config, key string) (any, error) {
		calls.Add(1)
		return "value:" + key, nil
	}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			obj, err := Load(nil, "test:once", load)
			is.NoErr(err)
			is.Equal(obj.(string), "value:test:once")
		}()
	}
	wg.Wait()
	is.Equal(calls.Load(), int32(1))
	Evict("test:once")
}

func TestLoadErrorNotCached(t *testing.T) {
	is := is.New(t)
	fail := true
	load := func(cfg *config.Config, key string) (any, error) {
		if fail {
			return nil, errors.New("boom")
		}
		return 42, nil
	}
	_, err := Load(nil, "test:err", load)
	is.True(err != nil)
	fail = false
	obj, err := Load(nil, "test:err", load)
	is.NoErr(err)
	is.Equal(obj.(int), 42)
	Evict("test:err")
}

func TestNestedLoad(t *testing.T) {
	is := is.New(t)
	inner := func(cfg *config.Config, key string) (any, error) { return 1, nil }
	outer := func(cfg *config.Config, key string) (any, error) {
		v, err := Load(cfg, "test:inner", inner)
		if err != nil {
			return nil, err
		}
		return v.(int) + 1, nil
	}
	obj, err := Load(nil, "test:outer", outer)
	is.NoErr(err)
	is.Equal(obj.(int), 2)
	Evict("test:outer")
	Evict("test:inner")
}
