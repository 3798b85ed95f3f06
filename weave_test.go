package weave_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.trai.ch/weave"
)

type greeter struct {
	greeting string
	name     string
}

func (g *greeter) Greet() string { return g.greeting + " " + g.name }

func TestFacade_ClassWithDependencies(t *testing.T) {
	ctx := context.Background()
	greeting := weave.NewToken("greeting")
	name := weave.NewKey[string]("name")
	class := weave.NewClass("Greeter", func(in *weave.Inputs) (any, error) {
		g := &greeter{}
		g.greeting, _ = in.Arg(0).(string)
		v, err := in.Property("name")
		if err != nil {
			return nil, err
		}
		g.name, _ = v.(string)
		return g, nil
	})

	reg := weave.NewRegistry()
	reg.MustRegister(class, []weave.Injection{
		weave.Param(0, greeting),
		weave.Property("name", name),
	})

	c := weave.New(weave.WithRegistry(reg), weave.WithDefaultScope(weave.Singleton))
	require.NoError(t, c.Bind(greeting).ToConstantValue("hi"))
	require.NoError(t, c.Bind(name).ToConstantValue("world"))
	require.NoError(t, c.Bind(class).ToSelf())

	g, err := weave.Get[*greeter](ctx, c, class)
	require.NoError(t, err)
	assert.Equal(t, "hi world", g.Greet())

	again, err := weave.Get[*greeter](ctx, c, class)
	require.NoError(t, err)
	assert.Same(t, g, again)

	n, err := weave.GetKey(ctx, c, name)
	require.NoError(t, err)
	assert.Equal(t, "world", n)
}

func TestFacade_MetadataAndMultiple(t *testing.T) {
	ctx := context.Background()
	db := weave.NewMetadataToken("db", nil)
	c := weave.New()
	require.NoError(t, c.Bind(db).WithMetadata(weave.Metadata{"name": "primary"}).ToConstantValue("p"))
	require.NoError(t, c.Bind(db).WithMetadata(weave.Metadata{"name": "replica"}).ToConstantValue("r"))

	all, err := weave.GetAll[string](ctx, c, db)
	require.NoError(t, err)
	assert.Equal(t, []string{"p", "r"}, all)

	replica, err := weave.Get[string](ctx, c, db, weave.Filter(weave.Metadata{"name": "replica"}))
	require.NoError(t, err)
	assert.Equal(t, "r", replica)

	_, err = c.Get(ctx, db)
	assert.ErrorIs(t, err, weave.ErrAmbiguousBinding)
}

func TestFacade_Modules(t *testing.T) {
	ctx := context.Background()
	port := weave.NewKey[int]("port")
	c := weave.New()
	require.NoError(t, c.Load(ctx, weave.NewModule("server", func(_ context.Context, b *weave.Binder) error {
		return b.Bind(port).ToConstantValue(8080)
	})))

	child := c.CreateChild()
	v, err := weave.GetKey(ctx, child, port)
	require.NoError(t, err)
	assert.Equal(t, 8080, v)

	missing := weave.NewToken("missing")
	_, err = child.Get(ctx, missing)
	assert.ErrorIs(t, err, weave.ErrUnboundToken)

	v2, err := child.Get(ctx, missing, weave.Optional())
	require.NoError(t, err)
	assert.Nil(t, v2)
}

func ExampleNew() {
	ctx := context.Background()
	greeting := weave.NewToken("greeting")
	out := weave.NewToken("out")

	c := weave.New()
	_ = c.Bind(greeting).ToConstantValue("hi")
	_ = c.Bind(out).ToDynamicValue(weave.Deps(greeting), func(_ context.Context, deps []any) (any, error) {
		return fmt.Sprintf("%s world", deps[0]), nil
	})

	v, err := weave.Get[string](ctx, c, out)
	if err != nil {
		panic(err)
	}
	fmt.Println(v)
	// Output: hi world
}
