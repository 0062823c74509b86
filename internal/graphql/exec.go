package graphql

import (
	"bytes"
	"context"
	"fmt"
	"runtime/debug"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/99designs/gqlgen/graphql"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/slothpixel/sloth/internal/util/slotherr"
)

// Executable binds an assembled schema to a Resolver. It implements
// graphql.ExecutableSchema so it can be served by the gqlgen handler.
//
// Fields of types with a field table run concurrently through graphql.FieldSet. A failed
// field is reported at its path and resolves to null, or nulls its parent when it is
// non-null.
type Executable struct {
	schema   *ast.Schema
	resolver *Resolver
}

var _ graphql.ExecutableSchema = (*Executable)(nil)

// NewExecutable binds schema to resolver. Call CheckBindings before serving.
func NewExecutable(schema *ast.Schema, resolver *Resolver) *Executable {
	return &Executable{schema: schema, resolver: resolver}
}

func (e *Executable) Schema() *ast.Schema {
	return e.schema
}

func (e *Executable) Complexity(typeName, field string, childComplexity int, args map[string]interface{}) (int, bool) {
	return 0, false
}

func (e *Executable) Exec(ctx context.Context) graphql.ResponseHandler {
	opCtx := graphql.GetOperationContext(ctx)
	if opCtx.Operation.Operation != ast.Query {
		return graphql.OneShot(graphql.ErrorResponse(ctx, "unsupported GraphQL operation"))
	}
	first := true
	return func(ctx context.Context) *graphql.Response {
		if !first {
			return nil
		}
		first = false
		fields := graphql.CollectFields(opCtx, opCtx.Operation.SelectionSet, []string{queryType})
		data := e.executeFields(ctx, opCtx, e.schema.Query, nil, fields, nil)
		var buf bytes.Buffer
		data.MarshalGQL(&buf)
		return &graphql.Response{Data: buf.Bytes()}
	}
}

// executeFields resolves the selection of one object. It returns graphql.Null when a
// non-null field of the object failed.
func (e *Executable) executeFields(
	ctx context.Context, opCtx *graphql.OperationContext, def *ast.Definition,
	parent interface{}, fields []graphql.CollectedField, path ast.Path,
) graphql.Marshaler {
	out := graphql.NewFieldSet(fields)
	table, resolved := e.resolver.tables[def.Name]
	for i, field := range fields {
		if field.Name == "__typename" {
			out.Values[i] = graphql.MarshalString(def.Name)
			continue
		}
		field := field
		fieldPath := childPath(path, ast.PathName(field.Alias))
		fieldDef := def.Fields.ForName(field.Name)
		resolve := func(ctx context.Context) graphql.Marshaler {
			res := e.resolveField(ctx, opCtx, def, fieldDef, table, parent, field, fieldPath)
			if res == graphql.Null && fieldDef != nil && fieldDef.Type.NonNull {
				atomic.AddUint32(&out.Invalids, 1)
			}
			return res
		}
		if resolved {
			out.Concurrently(i, resolve)
		} else {
			out.Values[i] = resolve(ctx)
		}
	}
	out.Dispatch(ctx)
	if 0 < atomic.LoadUint32(&out.Invalids) {
		return graphql.Null
	}
	return out
}

func (e *Executable) resolveField(
	ctx context.Context, opCtx *graphql.OperationContext, def *ast.Definition,
	fieldDef *ast.FieldDefinition, table fieldTable, parent interface{},
	f graphql.CollectedField, path ast.Path,
) (ret graphql.Marshaler) {
	if fieldDef == nil {
		return e.fail(ctx, f, path, slotherr.ValidationF("unknown field %s.%s", def.Name, f.Name))
	}
	if strings.HasPrefix(f.Name, "__") {
		return e.fail(ctx, f, path, slotherr.Validation("introspection disabled"))
	}

	defer func() {
		if r := recover(); r != nil {
			logger.ErrorF("Panic resolving %s.%s: %v\n%s", def.Name, f.Name, r, debug.Stack())
			ret = e.fail(ctx, f, path, slotherr.InternalErrF("panic in %s", f.Name))
		}
	}()

	var raw interface{}
	if table != nil {
		handler, ok := table[f.Name]
		if !ok {
			return e.fail(ctx, f, path, slotherr.InternalErrF("no resolver for %s.%s", def.Name, f.Name))
		}
		if err := ctx.Err(); err != nil {
			return e.fail(ctx, f, path, err)
		}
		var err error
		raw, err = handler(ctx, parent, f.ArgumentMap(opCtx.Variables))
		if err != nil {
			return e.fail(ctx, f, path, err)
		}
	} else {
		raw = projectField(parent, f.Name)
	}
	return e.complete(ctx, opCtx, fieldDef.Type, f, raw, path)
}

// complete shapes raw according to typ and the sub-selection of f. graphql.Null for a
// non-null typ tells the caller to null its own value.
func (e *Executable) complete(
	ctx context.Context, opCtx *graphql.OperationContext, typ *ast.Type,
	f graphql.CollectedField, raw interface{}, path ast.Path,
) graphql.Marshaler {
	_, grouped := e.resolver.tables[typ.NamedType]
	if typ.Elem != nil || !grouped {
		var err error
		if raw, err = normalize(raw); err != nil {
			return e.fail(ctx, f, path, slotherr.InternalErrE(err))
		}
	}
	if raw == nil {
		if typ.NonNull {
			return e.fail(ctx, f, path, slotherr.InternalErrF("non-null field %s resolved to null", f.Name))
		}
		return graphql.Null
	}

	if typ.Elem != nil {
		list, ok := raw.([]interface{})
		if !ok {
			return e.fail(ctx, f, path, slotherr.InternalErrF("field %s expected a list, got %T", f.Name, raw))
		}
		ret := make(graphql.Array, len(list))
		for i, item := range list {
			ret[i] = e.complete(ctx, opCtx, typ.Elem, f, item, childPath(path, ast.PathIndex(i)))
			if ret[i] == graphql.Null && typ.Elem.NonNull {
				return graphql.Null
			}
		}
		return ret
	}

	def := e.schema.Types[typ.Name()]
	if def == nil {
		return e.fail(ctx, f, path, slotherr.InternalErrF("unknown type %s", typ.Name()))
	}
	switch def.Kind {
	case ast.Scalar, ast.Enum:
		m, err := marshalLeaf(def, raw)
		if err != nil {
			return e.fail(ctx, f, path, slotherr.InternalErrF("field %s: %v", f.Name, err))
		}
		return m
	case ast.Object:
		if !grouped {
			if _, ok := raw.(map[string]interface{}); !ok {
				return e.fail(ctx, f, path, slotherr.InternalErrF("field %s expected an object, got %T", f.Name, raw))
			}
		}
		fields := graphql.CollectFields(opCtx, f.Selections, []string{def.Name})
		return e.executeFields(ctx, opCtx, def, raw, fields, path)
	}
	return e.fail(ctx, f, path, slotherr.InternalErrF("unsupported kind %s of %s", def.Kind, def.Name))
}

// fail reports err at path. The field resolves to null.
func (e *Executable) fail(ctx context.Context, f graphql.CollectedField, path ast.Path, err error) graphql.Marshaler {
	gqlErr := gqlerror.WrapPath(path, err)
	if f.Position != nil {
		gqlErr.Locations = []gqlerror.Location{{Line: f.Position.Line, Column: f.Position.Column}}
	}
	graphql.AddError(ctx, gqlErr)
	return graphql.Null
}

func childPath(path ast.Path, elem ast.PathElement) ast.Path {
	ret := make(ast.Path, len(path), len(path)+1)
	copy(ret, path)
	return append(ret, elem)
}

// CheckBindings verifies that every field of a resolved type has a handler and every
// handler has a field. A mismatch is a startup failure.
func (e *Executable) CheckBindings() error {
	names := make([]string, 0, len(e.resolver.tables))
	for name := range e.resolver.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		table := e.resolver.tables[name]
		def := e.schema.Types[name]
		if def == nil || def.Kind != ast.Object {
			return fmt.Errorf("schema has no object type %s", name)
		}
		for _, fd := range def.Fields {
			if strings.HasPrefix(fd.Name, "__") {
				continue
			}
			if _, ok := table[fd.Name]; !ok {
				return fmt.Errorf("no resolver for %s.%s", name, fd.Name)
			}
		}
		fieldNames := make([]string, 0, len(table))
		for field := range table {
			fieldNames = append(fieldNames, field)
		}
		sort.Strings(fieldNames)
		for _, field := range fieldNames {
			if def.Fields.ForName(field) == nil {
				return fmt.Errorf("resolver %s.%s has no schema field", name, field)
			}
		}
	}
	return nil
}
