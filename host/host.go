package host

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/rlp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"lukechampine.com/blake3"

	"launchpad/core/events"
	"launchpad/core/types"
	"launchpad/crypto"
	"launchpad/native/common"
	"launchpad/observability"
	"launchpad/storage"
)

var (
	ErrUnknownCode     = errors.New("host: unknown contract code")
	ErrContractExists  = errors.New("host: contract already deployed")
	ErrUnknownContract = common.NewError(common.CodeUnknownContract, "host: unknown contract")
	ErrDepthExceeded   = errors.New("host: call depth exceeded")
	ErrInvalidLabel    = errors.New("host: contract label required")
)

// DefaultMaxDepth bounds nested dispatch and query chains.
const DefaultMaxDepth = 8

var (
	prefixInstances = []byte("h/i/")
	prefixBank      = []byte("h/b/")
	prefixMeta      = []byte("h/m/")
	prefixContracts = []byte("c/")
)

func contractPrefix(addr crypto.Address) []byte {
	return append(append([]byte{}, prefixContracts...), addr.Bytes()...)
}

// Instance describes a deployed contract.
type Instance struct {
	Address crypto.Address
	Kind    string
	Label   string
	Creator crypto.Address
	Created uint64
}

// Host runs contract messages one at a time. Every message executes inside a
// single writable transaction that is committed only when the contract and
// all outbound instructions it queued succeed.
type Host struct {
	mu sync.Mutex

	regMu     sync.RWMutex
	codes     map[string]Contract
	instances map[crypto.Address]Instance

	db       storage.Database
	emitter  events.Emitter
	logger   *slog.Logger
	tracer   trace.Tracer
	metrics  *observability.HostMetrics
	nowFn    func() time.Time
	maxDepth int
	seq      uint64
}

// New constructs a host on top of db with default dependencies.
func New(db storage.Database) *Host {
	return &Host{
		codes:     make(map[string]Contract),
		instances: make(map[crypto.Address]Instance),
		db:        db,
		emitter:   events.NoopEmitter{},
		logger:    slog.Default(),
		tracer:    otel.Tracer("launchpad/host"),
		metrics:   observability.Host(),
		nowFn:     func() time.Time { return time.Now().UTC() },
		maxDepth:  DefaultMaxDepth,
	}
}

// SetEmitter configures where committed events are published.
func (h *Host) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		h.emitter = events.NoopEmitter{}
		return
	}
	h.emitter = emitter
}

// SetLogger configures the structured logger.
func (h *Host) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	h.logger = logger
}

// SetNowFunc overrides the block clock for deterministic testing.
func (h *Host) SetNowFunc(now func() time.Time) {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	h.nowFn = now
}

// SetMaxDepth bounds nested calls and queries.
func (h *Host) SetMaxDepth(depth int) {
	if depth <= 0 {
		depth = DefaultMaxDepth
	}
	h.maxDepth = depth
}

// RegisterCode makes a contract implementation deployable under kind.
func (h *Host) RegisterCode(kind string, code Contract) error {
	kind = strings.TrimSpace(kind)
	if kind == "" || code == nil {
		return fmt.Errorf("host: invalid code registration %q", kind)
	}
	h.regMu.Lock()
	defer h.regMu.Unlock()
	if _, exists := h.codes[kind]; exists {
		return fmt.Errorf("host: code %q already registered", kind)
	}
	h.codes[kind] = code
	return nil
}

// Lookup returns the deployed instance at addr.
func (h *Host) Lookup(addr crypto.Address) (Instance, bool) {
	h.regMu.RLock()
	defer h.regMu.RUnlock()
	inst, ok := h.instances[addr]
	return inst, ok
}

// Instances lists the deployed instances ordered by address.
func (h *Host) Instances() []Instance {
	h.regMu.RLock()
	out := make([]Instance, 0, len(h.instances))
	for _, inst := range h.instances {
		out = append(out, inst)
	}
	h.regMu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Address.Compare(out[j].Address) < 0 })
	return out
}

// Load rebinds the instances persisted in the database. Every recorded kind
// must have been registered beforehand.
func (h *Host) Load() error {
	tx, err := h.db.Begin(false)
	if err != nil {
		return common.StorageError(err)
	}
	defer tx.Discard()

	loaded := make(map[crypto.Address]Instance)
	err = tx.Iterate(storage.PrefixRange(prefixInstances), storage.Ascending, func(_, value []byte) (bool, error) {
		var inst Instance
		if err := decodeInstance(value, &inst); err != nil {
			return false, err
		}
		loaded[inst.Address] = inst
		return true, nil
	})
	if err != nil {
		return common.StorageError(err)
	}

	h.regMu.Lock()
	defer h.regMu.Unlock()
	for addr, inst := range loaded {
		if _, ok := h.codes[inst.Kind]; !ok {
			return fmt.Errorf("%w: %s (instance %s)", ErrUnknownCode, inst.Kind, addr)
		}
		h.instances[addr] = inst
	}
	return nil
}

// Deploy instantiates a new contract of the given kind. The address is
// derived from the creator and label.
func (h *Host) Deploy(ctx context.Context, kind, label string, creator crypto.Address, init json.RawMessage) (crypto.Address, *Result, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return crypto.Address{}, nil, ErrInvalidLabel
	}
	h.regMu.RLock()
	_, known := h.codes[kind]
	h.regMu.RUnlock()
	if !known {
		return crypto.Address{}, nil, fmt.Errorf("%w: %s", ErrUnknownCode, kind)
	}
	addr := crypto.ContractAddress(creator, label)
	if _, exists := h.Lookup(addr); exists {
		return crypto.Address{}, nil, fmt.Errorf("%w: %s", ErrContractExists, addr)
	}

	inst := Instance{Address: addr, Kind: kind, Label: label, Creator: creator}
	res, err := h.run(ctx, addr, creator, kind, "instantiate", init, func(x *execution) error {
		inst.Created = uint64(x.now.Unix())
		if err := storage.PutRLP(x.store, instanceKey(addr), &inst); err != nil {
			return common.StorageError(err)
		}
		x.deploying[addr] = inst
		return x.call(ctx, addr, creator, nil, init, 0, true)
	})
	if err != nil {
		return crypto.Address{}, nil, err
	}
	h.regMu.Lock()
	h.instances[addr] = inst
	h.regMu.Unlock()
	return addr, res, nil
}

// Execute runs msg against contract on behalf of caller with funds attached.
// Either every effect of the message commits or none does.
func (h *Host) Execute(ctx context.Context, contract, caller crypto.Address, funds types.Coins, msg json.RawMessage) (*Result, error) {
	kind := ""
	if inst, ok := h.Lookup(contract); ok {
		kind = inst.Kind
	}
	return h.run(ctx, contract, caller, kind, actionOf(msg), msg, func(x *execution) error {
		return x.call(ctx, contract, caller, funds, msg, 0, false)
	})
}

// Query runs a read-only query against contract and returns its JSON result.
func (h *Host) Query(ctx context.Context, contract crypto.Address, msg json.RawMessage) (json.RawMessage, error) {
	tx, err := h.db.Begin(false)
	if err != nil {
		return nil, common.StorageError(err)
	}
	defer tx.Discard()

	v := &view{host: h, store: tx, now: h.nowFn()}
	out, err := v.query(ctx, contract, msg, 0)
	if err != nil {
		return nil, err
	}
	return json.Marshal(out)
}

// QueryInto runs a query with a typed request and decodes the result into resp.
func (h *Host) QueryInto(ctx context.Context, contract crypto.Address, req, resp interface{}) error {
	raw, err := json.Marshal(req)
	if err != nil {
		return common.InvalidMessage("encode query: %v", err)
	}
	out, err := h.Query(ctx, contract, raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(out, resp)
}

// Mint credits native coins outside of any contract call. Used for genesis
// balances only.
func (h *Host) Mint(ctx context.Context, to crypto.Address, coins types.Coins) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	tx, err := h.db.Begin(true)
	if err != nil {
		return common.StorageError(err)
	}
	defer tx.Discard()
	if err := bankFor(tx).Mint(to, coins); err != nil {
		return err
	}
	return common.StorageError(tx.Commit())
}

// Balance returns the committed native balance of addr.
func (h *Host) Balance(ctx context.Context, addr crypto.Address, denom string) (*big.Int, error) {
	tx, err := h.db.Begin(false)
	if err != nil {
		return nil, common.StorageError(err)
	}
	defer tx.Discard()
	return bankFor(tx).Balance(addr, denom)
}

// GetMeta reads a host level marker such as the genesis flag.
func (h *Host) GetMeta(key string) ([]byte, bool, error) {
	tx, err := h.db.Begin(false)
	if err != nil {
		return nil, false, common.StorageError(err)
	}
	defer tx.Discard()
	v, err := tx.Get(metaKey(key))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, common.StorageError(err)
	}
	return v, true, nil
}

// PutMeta writes a host level marker.
func (h *Host) PutMeta(key string, value []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	tx, err := h.db.Begin(true)
	if err != nil {
		return common.StorageError(err)
	}
	defer tx.Discard()
	if err := tx.Put(metaKey(key), value); err != nil {
		return common.StorageError(err)
	}
	return common.StorageError(tx.Commit())
}

func (h *Host) run(ctx context.Context, contract, caller crypto.Address, kind, action string, msg json.RawMessage, fn func(*execution) error) (*Result, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	start := time.Now()
	ctx, span := h.tracer.Start(ctx, "host.execute", trace.WithAttributes(
		attribute.String("contract", contract.String()),
		attribute.String("kind", kind),
		attribute.String("action", action),
	))
	defer span.End()

	h.seq++
	msgID := messageID(contract, caller, h.seq, msg)
	res, err := h.runTx(ctx, msgID, fn)

	code := common.Code(err)
	h.metrics.ObserveMessage(kind, action, code, time.Since(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, code)
		h.logger.Warn("message rejected",
			slog.String("contract", contract.String()),
			slog.String("kind", kind),
			slog.String("action", action),
			slog.String("code", code),
			slog.String("msg_id", msgID),
			slog.Any("error", err))
		return nil, err
	}
	h.logger.Debug("message executed",
		slog.String("contract", contract.String()),
		slog.String("kind", kind),
		slog.String("action", action),
		slog.String("msg_id", msgID),
		slog.Int("events", len(res.Events)))

	for _, evt := range res.Events {
		h.metrics.RecordEvent(evt.Type)
		h.emitter.Emit(events.Committed{Contract: evt.Attributes[AttrContract], MsgID: msgID, Evt: evt})
	}
	return res, nil
}

func (h *Host) runTx(ctx context.Context, msgID string, fn func(*execution) error) (*Result, error) {
	tx, err := h.db.Begin(true)
	if err != nil {
		return nil, common.StorageError(err)
	}
	defer tx.Discard()

	x := &execution{
		view:      view{host: h, store: storage.NewSynchronized(tx), now: h.nowFn()},
		deploying: make(map[crypto.Address]Instance),
	}
	if err := fn(x); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, common.StorageError(err)
	}
	for _, evt := range x.events {
		evt.Attributes[AttrMsgID] = msgID
	}
	return &Result{MsgID: msgID, Events: x.events, Data: x.data}, nil
}

func messageID(contract, caller crypto.Address, seq uint64, msg []byte) string {
	hasher := blake3.New(32, nil)
	hasher.Write(contract.Bytes())
	hasher.Write(caller.Bytes())
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], seq)
	hasher.Write(buf[:])
	hasher.Write(msg)
	return hex.EncodeToString(hasher.Sum(nil))
}

// actionOf returns the tag of a {"action":{...}} message.
func actionOf(msg json.RawMessage) string {
	var tags map[string]json.RawMessage
	if err := json.Unmarshal(msg, &tags); err != nil || len(tags) != 1 {
		return ""
	}
	for tag := range tags {
		return tag
	}
	return ""
}

func instanceKey(addr crypto.Address) []byte {
	return append(append([]byte{}, prefixInstances...), addr.Bytes()...)
}

func metaKey(key string) []byte {
	return append(append([]byte{}, prefixMeta...), key...)
}

func bankFor(store storage.Store) *StoreBank {
	return NewStoreBank(storage.NewPrefixed(store, prefixBank))
}

func decodeInstance(raw []byte, inst *Instance) error {
	return rlp.DecodeBytes(raw, inst)
}
