// Package redismap persists registered struct types as redis hashes.
//
// Every registered field becomes one hash field. Scalars are stored in
// their string form; everything else, nested structs included, is stored as
// JSON. Hash field names derive from field names via snake_case, with a
// `redis:"..."` struct tag override and `redis:"-"` to exclude a field.
package redismap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/noaland/mirror"
	strutil "github.com/noaland/mirror/internal/util/strings"
)

// ErrNotFound is returned by Load when no hash exists at the key.
var ErrNotFound = errors.New("record not found")

// FieldName returns the hash field a struct field maps to: the `redis` tag
// when present, otherwise the snake_cased field name. The empty string
// marks a field excluded with `redis:"-"`.
func FieldName(f mirror.Field) string {
	if tag, ok := f.Tag.Lookup("redis"); ok {
		if tag == "-" {
			return ""
		}
		return tag
	}
	return strutil.ToSnakeCase(f.Name)
}

// Save writes one hash field per registered field of value under key.
func Save[T any](ctx context.Context, client redis.Cmdable, d *mirror.Type[T], key string, value *T) error {
	fields := d.Fields()
	pairs := make([]any, 0, len(fields)*2)
	for _, f := range fields {
		name := FieldName(f)
		if name == "" {
			continue
		}
		v, err := d.Get(value, f.Name)
		if err != nil {
			return err
		}
		encoded, err := encodeField(f, v)
		if err != nil {
			return fmt.Errorf("encode %s.%s: %w", d.Name(), f.Name, err)
		}
		pairs = append(pairs, name, encoded)
	}
	if len(pairs) == 0 {
		return nil
	}
	return client.HSet(ctx, key, pairs...).Err()
}

// Load reads the hash at key and writes its fields onto target through the
// descriptor's checked Set. Hash fields with no registered counterpart are
// ignored; registered fields absent from the hash keep their current value.
// The target is only touched when the whole hash decodes.
func Load[T any](ctx context.Context, client redis.Cmdable, d *mirror.Type[T], key string, target *T) error {
	if target == nil {
		return mirror.ErrNilTarget
	}

	data, err := client.HGetAll(ctx, key).Result()
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}

	staged := *target
	for _, f := range d.Fields() {
		name := FieldName(f)
		if name == "" {
			continue
		}
		raw, ok := data[name]
		if !ok {
			continue
		}
		v, err := decodeField(f, raw)
		if err != nil {
			return fmt.Errorf("decode %s.%s: %w", d.Name(), f.Name, err)
		}
		if err := d.Set(&staged, f.Name, v); err != nil {
			return err
		}
	}
	*target = staged
	return nil
}

// Delete removes the hash at key.
func Delete(ctx context.Context, client redis.Cmdable, key string) error {
	return client.Del(ctx, key).Err()
}

// Exists checks whether a hash exists at key.
func Exists(ctx context.Context, client redis.Cmdable, key string) (bool, error) {
	count, err := client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// encodeField renders a field value for hash storage.
func encodeField(f mirror.Field, value any) (string, error) {
	v := reflect.ValueOf(value)
	switch f.Type.Kind() {
	case reflect.String:
		return v.String(), nil
	case reflect.Bool:
		return strconv.FormatBool(v.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10), nil
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'g', -1, 64), nil
	default:
		encoded, err := json.Marshal(value)
		if err != nil {
			return "", err
		}
		return string(encoded), nil
	}
}

// decodeField parses a stored hash value back into the declared field type.
func decodeField(f mirror.Field, raw string) (any, error) {
	holder := reflect.New(f.Type)
	switch f.Type.Kind() {
	case reflect.String:
		holder.Elem().SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, err
		}
		holder.Elem().SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, f.Type.Bits())
		if err != nil {
			return nil, err
		}
		holder.Elem().SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 10, f.Type.Bits())
		if err != nil {
			return nil, err
		}
		holder.Elem().SetUint(n)
	case reflect.Float32, reflect.Float64:
		n, err := strconv.ParseFloat(raw, f.Type.Bits())
		if err != nil {
			return nil, err
		}
		holder.Elem().SetFloat(n)
	default:
		if err := json.Unmarshal([]byte(raw), holder.Interface()); err != nil {
			return nil, err
		}
	}
	return holder.Elem().Interface(), nil
}
