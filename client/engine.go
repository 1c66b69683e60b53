package client

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/ddbgo/codec"
	"github.com/hupe1980/ddbgo/model"
	"github.com/hupe1980/ddbgo/value"
)

// Func is a function callable from scripts run on a LocalEngine.
type Func func(ctx context.Context, args []*value.Value) (*value.Value, error)

var (
	// ErrUndefined is returned for unknown variables or functions.
	ErrUndefined = errors.New("undefined")

	// ErrSyntax is returned for scripts the engine cannot parse.
	ErrSyntax = errors.New("syntax error")
)

// LocalEngine is an in-process engine implementing Dialer.
//
// Its script language is deliberately small: a script is a literal, a bound
// variable name or a call fn(arg, ...) of a registered function whose
// arguments are scripts again. Literals are numbers (5, 5l, 1.5), strings
// ("x"), symbols (`x), true/false, NULL and vectors ([1,2,3]).
//
// Variables are stored encoded, so values uploaded by a caller and values
// returned to it never share storage with the engine.
type LocalEngine struct {
	codec codec.Codec

	mu    sync.RWMutex
	vars  map[string][]byte
	funcs map[string]Func
	users map[string]string

	sessions atomic.Int64
}

// NewLocalEngine creates an engine with the builtin functions registered
// and no users, in which case any credentials are accepted.
func NewLocalEngine() *LocalEngine {
	e := &LocalEngine{
		codec: codec.Binary{Compression: codec.CompressionNone},
		vars:  make(map[string][]byte),
		funcs: make(map[string]Func),
		users: make(map[string]string),
	}
	e.registerBuiltins()
	return e
}

// AddUser adds an account. Once an account exists every dial is checked.
func (e *LocalEngine) AddUser(user, password string) {
	e.mu.Lock()
	e.users[user] = password
	e.mu.Unlock()
}

// Register binds fn to name, replacing any previous binding.
func (e *LocalEngine) Register(name string, fn Func) {
	e.mu.Lock()
	e.funcs[name] = fn
	e.mu.Unlock()
}

// Set binds a copy of v to name.
func (e *LocalEngine) Set(name string, v *value.Value) error {
	data, err := e.codec.Marshal(v)
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.vars[name] = data
	e.mu.Unlock()
	return nil
}

// Get returns a copy of the variable bound to name.
func (e *LocalEngine) Get(name string) (*value.Value, bool) {
	e.mu.RLock()
	data, ok := e.vars[name]
	e.mu.RUnlock()
	if !ok {
		return nil, false
	}
	var v *value.Value
	if err := e.codec.Unmarshal(data, &v); err != nil {
		return nil, false
	}
	return v, true
}

// Variables returns the bound variable names in sorted order.
func (e *LocalEngine) Variables() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]string, 0, len(e.vars))
	for n := range e.vars {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Sessions returns the number of open sessions.
func (e *LocalEngine) Sessions() int64 { return e.sessions.Load() }

// Dial opens a session after checking the credentials.
func (e *LocalEngine) Dial(ctx context.Context, addr, user, password string) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.mu.RLock()
	want, known := e.users[user]
	restricted := len(e.users) > 0
	e.mu.RUnlock()
	if restricted && (!known || want != password) {
		return nil, fmt.Errorf("%w: user %q at %s", ErrAuth, user, addr)
	}
	e.sessions.Add(1)
	return &localSession{engine: e}, nil
}

type localSession struct {
	engine *LocalEngine
	closed atomic.Bool
}

func (s *localSession) Run(ctx context.Context, script string) (*value.Value, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.engine.eval(ctx, strings.TrimSpace(script))
}

func (s *localSession) Call(ctx context.Context, fn string, args []*value.Value) (*value.Value, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.engine.call(ctx, fn, args)
}

func (s *localSession) Upload(ctx context.Context, vars map[string]*value.Value) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	encoded := make(map[string][]byte, len(vars))
	for name, v := range vars {
		data, err := s.engine.codec.Marshal(v)
		if err != nil {
			return fmt.Errorf("upload %s: %w", name, err)
		}
		encoded[name] = data
	}
	s.engine.mu.Lock()
	for name, data := range encoded {
		s.engine.vars[name] = data
	}
	s.engine.mu.Unlock()
	return nil
}

func (s *localSession) Close() error {
	if s.closed.CompareAndSwap(false, true) {
		s.engine.sessions.Add(-1)
	}
	return nil
}

func (e *LocalEngine) call(ctx context.Context, name string, args []*value.Value) (*value.Value, error) {
	e.mu.RLock()
	fn, ok := e.funcs[name]
	e.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w function %s", ErrUndefined, name)
	}
	out, err := fn(ctx, args)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return value.NewVoid(), nil
	}
	return out, nil
}

func (e *LocalEngine) eval(ctx context.Context, script string) (*value.Value, error) {
	switch {
	case script == "" || script == "NULL":
		return value.NewVoid(), nil
	case script == "true" || script == "false":
		return value.NewBool(script == "true"), nil
	case script[0] == '"' || script[0] == '\'':
		if len(script) < 2 || script[len(script)-1] != script[0] {
			return nil, fmt.Errorf("%w: unterminated string %s", ErrSyntax, script)
		}
		return value.NewString(script[1 : len(script)-1]), nil
	case script[0] == '`':
		return value.NewSymbol(script[1:]), nil
	case script[0] == '[':
		if script[len(script)-1] != ']' {
			return nil, fmt.Errorf("%w: unterminated vector %s", ErrSyntax, script)
		}
		return e.evalVector(ctx, script[1:len(script)-1])
	}

	if open := strings.IndexByte(script, '('); open > 0 && script[len(script)-1] == ')' {
		name := strings.TrimSpace(script[:open])
		if validIdent(name) {
			parts, err := splitArgs(script[open+1 : len(script)-1])
			if err != nil {
				return nil, err
			}
			args := make([]*value.Value, len(parts))
			for i, p := range parts {
				if args[i], err = e.eval(ctx, p); err != nil {
					return nil, err
				}
			}
			return e.call(ctx, name, args)
		}
	}

	if validIdent(script) {
		v, ok := e.Get(script)
		if !ok {
			return nil, fmt.Errorf("%w variable %s", ErrUndefined, script)
		}
		return v, nil
	}

	return parseNumber(script)
}

func (e *LocalEngine) evalVector(ctx context.Context, body string) (*value.Value, error) {
	parts, err := splitArgs(body)
	if err != nil {
		return nil, err
	}
	elems := make([]*value.Value, len(parts))
	typ := model.TypeVoid
	uniform := true
	for i, p := range parts {
		if elems[i], err = e.eval(ctx, p); err != nil {
			return nil, err
		}
		switch {
		case !elems[i].IsScalar():
			uniform = false
		case typ == model.TypeVoid:
			typ = elems[i].Type()
		case elems[i].Type() != typ && elems[i].Type() != model.TypeVoid:
			uniform = false
		}
	}
	if !uniform {
		return value.NewAnyVector(elems...).Value, nil
	}
	if typ == model.TypeVoid {
		typ = model.TypeDouble
	}
	vec := value.NewVector(typ, 0, len(elems))
	for _, el := range elems {
		if el.Type() == model.TypeVoid {
			el = value.NewScalar(typ)
		}
		if !vec.Append(el) {
			return nil, fmt.Errorf("%w: cannot append %s to %s vector", ErrSyntax, el, typ)
		}
	}
	return vec.Value, nil
}

func parseNumber(s string) (*value.Value, error) {
	if body, ok := strings.CutSuffix(s, "l"); ok {
		n, err := strconv.ParseInt(body, 10, 64)
		if err == nil {
			return value.NewLong(n), nil
		}
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n >= math.MinInt32+1 && n <= math.MaxInt32 {
			return value.NewInt(int32(n)), nil
		}
		return value.NewLong(n), nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return value.NewDouble(f), nil
	}
	return nil, fmt.Errorf("%w: cannot parse %q", ErrSyntax, s)
}

// splitArgs splits on top-level commas, honouring quotes and brackets.
func splitArgs(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var (
		parts []string
		depth int
		quote byte
		start int
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '(' || c == '[':
			depth++
		case c == ')' || c == ']':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("%w: unbalanced %q", ErrSyntax, s)
			}
		case c == ',' && depth == 0:
			parts = append(parts, strings.TrimSpace(s[start:i]))
			start = i + 1
		}
	}
	if depth != 0 || quote != 0 {
		return nil, fmt.Errorf("%w: unbalanced %q", ErrSyntax, s)
	}
	return append(parts, strings.TrimSpace(s[start:])), nil
}

func (e *LocalEngine) registerBuiltins() {
	unary := func(name string, fn func(v *value.Value) (*value.Value, error)) {
		e.funcs[name] = func(_ context.Context, args []*value.Value) (*value.Value, error) {
			if len(args) != 1 {
				return nil, fmt.Errorf("%s expects 1 argument, got %d", name, len(args))
			}
			return fn(args[0])
		}
	}

	unary("size", func(v *value.Value) (*value.Value, error) {
		return value.NewInt(int32(v.Size())), nil
	})
	unary("typestr", func(v *value.Value) (*value.Value, error) {
		return value.NewString(v.Type().String()), nil
	})
	unary("form", func(v *value.Value) (*value.Value, error) {
		return value.NewString(v.Form().String()), nil
	})
	unary("string", func(v *value.Value) (*value.Value, error) {
		return value.NewString(v.String()), nil
	})
	unary("sum", func(v *value.Value) (*value.Value, error) {
		if !v.Type().IsNumeric() {
			return nil, fmt.Errorf("sum of non-numeric %s", v.Type())
		}
		total := 0.0
		for i := 0; i < v.Size(); i++ {
			if !v.IsNullAt(i) {
				total += v.DoubleAt(i)
			}
		}
		return value.NewDouble(total), nil
	})
	unary("undef", func(v *value.Value) (*value.Value, error) {
		e.mu.Lock()
		delete(e.vars, v.String())
		e.mu.Unlock()
		return value.NewVoid(), nil
	})
	unary("schema", schemaOf)

	e.funcs["tableInsert"] = e.tableInsert
	e.funcs["requestFlag"] = func(ctx context.Context, _ []*value.Value) (*value.Value, error) {
		return value.NewString(BehaviorFromContext(ctx).Flag()), nil
	}
}

// schemaOf describes a table as a dictionary whose colDefs table lists the
// name, type and decimal scale of every column.
func schemaOf(v *value.Value) (*value.Value, error) {
	t := v.AsTable()
	if t == nil {
		return nil, fmt.Errorf("schema of non-table %s", v.Form())
	}
	n := t.Columns()
	names := make([]string, n)
	typeNames := make([]string, n)
	typeInts := make([]int32, n)
	extra := value.NewVector(model.TypeInt, n, n)
	for i := 0; i < n; i++ {
		typ := t.ColumnType(i)
		names[i] = t.ColumnName(i)
		typeNames[i] = typ.String()
		typeInts[i] = int32(typ)
		if typ.Category() == model.CategoryDenary {
			extra.SetIntAt(i, int32(t.Column(i).Scale()))
		} else {
			extra.SetNullAt(i)
		}
	}
	defs, err := value.NewTable(
		[]string{"name", "typeString", "typeInt", "extra"},
		[]*value.Value{
			value.NewStringVector(names...).Value,
			value.NewStringVector(typeNames...).Value,
			value.NewIntVector(typeInts...).Value,
			extra.Value,
		},
	)
	if err != nil {
		return nil, err
	}
	d := value.NewDictionary(model.TypeString, model.TypeAny)
	d.SetByName("colDefs", defs.Value)
	d.SetByName("name", value.NewString(t.Name()))
	return d.Value, nil
}

// tableInsert appends the rows of a table to the table variable name and
// returns the number of rows inserted.
func (e *LocalEngine) tableInsert(_ context.Context, args []*value.Value) (*value.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("tableInsert expects 2 arguments, got %d", len(args))
	}
	name := args[0].String()
	rows := args[1].AsTable()
	if rows == nil {
		return nil, fmt.Errorf("tableInsert of non-table %s", args[1].Form())
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	data, ok := e.vars[name]
	if !ok {
		return nil, fmt.Errorf("%w variable %s", ErrUndefined, name)
	}
	var cur *value.Value
	if err := e.codec.Unmarshal(data, &cur); err != nil {
		return nil, err
	}
	t := cur.AsTable()
	if t == nil {
		return nil, fmt.Errorf("tableInsert into non-table %s", name)
	}
	if !t.AppendRows(rows) {
		return nil, fmt.Errorf("tableInsert: rows do not match the schema of %s", name)
	}
	out, err := e.codec.Marshal(t.Value)
	if err != nil {
		return nil, err
	}
	e.vars[name] = out
	return value.NewInt(int32(rows.Rows())), nil
}
