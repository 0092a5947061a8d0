// Copyright 2018-2022 CERN
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// In applying this license, CERN does not waive the privileges and immunities
// granted to it by virtue of its status as an Intergovernmental Organization
// or submit itself to any jurisdiction.

// Package redis provides a cache driver backed by a redis server, the
// driver to use when multiple worker processes must share one lock view.
// SETNX gives the atomic set-if-absent the lock registry relies on.
package redis

import (
	"context"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"

	"github.com/davmount/davmount/pkg/cache"
	"github.com/davmount/davmount/pkg/errtypes"
)

func init() {
	cache.Register("redis", New)
}

type config struct {
	Address  string `mapstructure:"address"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type rcache struct {
	client *goredis.Client
	prefix string
}

// New returns a redis cache.
func New(m map[string]interface{}) (cache.Cache, error) {
	conf := &config{}
	if err := mapstructure.Decode(m, conf); err != nil {
		return nil, errors.Wrap(err, "redis: error decoding config")
	}
	if conf.Address == "" {
		conf.Address = "localhost:6379"
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:     conf.Address,
		Username: conf.Username,
		Password: conf.Password,
		DB:       conf.DB,
	})
	return &rcache{client: client, prefix: conf.Prefix}, nil
}

func (r *rcache) key(key string) string {
	return r.prefix + key
}

func (r *rcache) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err == goredis.Nil {
		return nil, errtypes.NotFound(key)
	}
	if err != nil {
		return nil, errors.Wrap(err, "redis: error getting key "+key)
	}
	return v, nil
}

func (r *rcache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, r.key(key), value, ttl).Err(); err != nil {
		return errors.Wrap(err, "redis: error setting key "+key)
	}
	return nil
}

func (r *rcache) SetIfAbsent(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, r.key(key), value, ttl).Result()
	if err != nil {
		return false, errors.Wrap(err, "redis: error setting key "+key)
	}
	return ok, nil
}

func (r *rcache) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return errors.Wrap(err, "redis: error removing key "+key)
	}
	return nil
}
