package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"time"

	"bookingengine/internal/app/commands"
)

// IdempotentCommand must be implemented by commands that want idempotency guarantees.
type IdempotentCommand interface {
	commands.Command
	IdempotencyKey() string
	ResultPrototype() any // should match the handler result type
}

// Fingerprinted commands can detect a key being reused for a different payload.
type Fingerprinted interface {
	Fingerprint() string
}

// IdempotencyRecord is a stored outcome. A Pending record holds the key
// while the first request carrying it is still running.
type IdempotencyRecord struct {
	Key         string
	CommandKey  string
	Fingerprint string
	Payload     []byte
	Error       string
	Pending     bool
	OccurredAt  time.Time
}

type IdempotencyStore interface {
	Get(ctx context.Context, key string) (IdempotencyRecord, bool, error)
	// Reserve stores rec only if no live record holds its key and reports
	// whether it did. It must be atomic across concurrent callers.
	Reserve(ctx context.Context, rec IdempotencyRecord) (bool, error)
	Save(ctx context.Context, rec IdempotencyRecord) error
}

type ResultCodec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, out any) error
}

type JSONResultCodec struct{}

func (JSONResultCodec) Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONResultCodec) Decode(data []byte, out any) error {
	return json.Unmarshal(data, out)
}

var (
	ErrIdempotencyConflict = errors.New("middleware: idempotency key reused with a different request")
	ErrIdempotencyInFlight = errors.New("middleware: a request with this idempotency key is still in progress")
	errMissingPrototype    = errors.New("middleware: idempotent command requires result prototype")
)

// Idempotency replays the stored outcome of a command whose key was seen
// before. Keys are scoped by command key so two command types never collide.
func Idempotency(store IdempotencyStore, codec ResultCodec) CommandMiddleware {
	if store == nil {
		panic("middleware: idempotency store required")
	}
	if codec == nil {
		codec = JSONResultCodec{}
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			idCmd, ok := cmd.(IdempotentCommand)
			if !ok {
				return nextFn(ctx, cmd)
			}
			if idCmd.IdempotencyKey() == "" {
				return nextFn(ctx, cmd)
			}
			key := cmd.Key() + ":" + idCmd.IdempotencyKey()
			fingerprint := ""
			if fp, ok := cmd.(Fingerprinted); ok {
				fingerprint = fp.Fingerprint()
			}

			rec, found, err := store.Get(ctx, key)
			if err != nil {
				return nil, err
			}
			if found {
				return replay(idCmd, codec, rec, fingerprint)
			}

			claim := IdempotencyRecord{
				Key:         key,
				CommandKey:  cmd.Key(),
				Fingerprint: fingerprint,
				Pending:     true,
				OccurredAt:  time.Now().UTC(),
			}
			reserved, err := store.Reserve(ctx, claim)
			if err != nil {
				return nil, err
			}
			if !reserved {
				// Another request took the key between Get and Reserve.
				rec, found, err := store.Get(ctx, key)
				if err != nil {
					return nil, err
				}
				if !found {
					return nil, ErrIdempotencyInFlight
				}
				return replay(idCmd, codec, rec, fingerprint)
			}

			result, err := nextFn(ctx, cmd)
			record := IdempotencyRecord{
				Key:         key,
				CommandKey:  cmd.Key(),
				Fingerprint: fingerprint,
				OccurredAt:  time.Now().UTC(),
			}
			if err != nil {
				record.Error = err.Error()
				if saveErr := store.Save(ctx, record); saveErr != nil {
					return nil, errors.Join(err, saveErr)
				}
				return nil, err
			}
			if result != nil {
				payload, encErr := codec.Encode(result)
				if encErr != nil {
					record.Error = encErr.Error()
					return nil, errors.Join(encErr, store.Save(ctx, record))
				}
				record.Payload = payload
			}
			if saveErr := store.Save(ctx, record); saveErr != nil {
				return nil, saveErr
			}
			return result, nil
		})
	}
}

func replay(cmd IdempotentCommand, codec ResultCodec, rec IdempotencyRecord, fingerprint string) (any, error) {
	if rec.Fingerprint != "" && fingerprint != "" && rec.Fingerprint != fingerprint {
		return nil, ErrIdempotencyConflict
	}
	if rec.Pending {
		return nil, ErrIdempotencyInFlight
	}
	if rec.Error != "" {
		return nil, errors.New(rec.Error)
	}
	proto := cmd.ResultPrototype()
	if proto == nil {
		return nil, errMissingPrototype
	}
	if err := codec.Decode(rec.Payload, proto); err != nil {
		return nil, err
	}
	return normalizePrototype(proto), nil
}

func normalizePrototype(proto any) any {
	rv := reflect.ValueOf(proto)
	if rv.Kind() == reflect.Ptr && !rv.IsNil() {
		return rv.Interface()
	}
	return proto
}
