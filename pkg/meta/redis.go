// pkg/meta/redis.go

package meta

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisMeta struct {
	conf *Config
	rdb  *redis.Client
	key  string
}

func init() {
	Register("redis", newRedisMeta)
	Register("rediss", newRedisMeta)
}

// newRedisMeta keeps the format of grid conf.Name in a Redis string.
func newRedisMeta(driver, addr string, conf *Config) (Meta, error) {
	if conf.Name == "" {
		return nil, fmt.Errorf("grid name is required for %s", driver)
	}
	url := driver + "://" + addr
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %s", url, err)
	}
	if opt.Password == "" && os.Getenv("REDIS_PASSWORD") != "" {
		opt.Password = os.Getenv("REDIS_PASSWORD")
	}
	opt.MaxRetries = conf.Retries
	opt.MinRetryBackoff = time.Millisecond * 100
	opt.MaxRetryBackoff = time.Minute * 1
	opt.ReadTimeout = time.Second * 30
	opt.WriteTimeout = time.Second * 5
	return &redisMeta{
		conf: conf,
		rdb:  redis.NewClient(opt),
		key:  "rasterswap:" + conf.Name + ":" + ThisFile,
	}, nil
}

func (rm *redisMeta) Name() string {
	return "redis"
}

func (rm *redisMeta) Init(format Format, force bool) error {
	if rm.conf.ReadOnly {
		return fmt.Errorf("read-only meta")
	}
	ctx := context.Background()
	if old, err := rm.Load(); err == nil {
		if err = checkUpdate(*old, format, force); err != nil {
			return err
		}
	} else if !errors.Is(err, redis.Nil) {
		return err
	}
	data, err := json.MarshalIndent(format, "", "")
	if err != nil {
		return fmt.Errorf("json: %s", err)
	}
	return rm.rdb.Set(ctx, rm.key, data, 0).Err()
}

func (rm *redisMeta) Load() (*Format, error) {
	body, err := rm.rdb.Get(context.Background(), rm.key).Bytes()
	if err != nil {
		return nil, err
	}
	var format Format
	if err = json.Unmarshal(body, &format); err != nil {
		return nil, fmt.Errorf("json: %s", err)
	}
	return &format, nil
}

func (rm *redisMeta) Destroy() error {
	return rm.rdb.Del(context.Background(), rm.key).Err()
}
