package project

import (
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pytch/internal/actor"
	"github.com/roach88/pytch/internal/hooks"
)

type published struct {
	channel, key string
	target       actor.Actor
}

type sinkRecorder struct {
	got []published
}

func (s *sinkRecorder) Publish(channel, key string, target actor.Actor) bool {
	s.got = append(s.got, published{channel, key, target})
	return true
}

func newTestProject(opts ...Option) *Project {
	base := []Option{
		WithIDGenerator(NewSequentialGenerator("i")),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	return New(append(base, opts...)...)
}

func boxClass(name string) *actor.Class {
	return actor.NewSpriteClass(name, []actor.Costume{{Name: "box", AssetPath: "box.png", Width: 10, Height: 10}})
}

func TestRegisterSpriteClass(t *testing.T) {
	p := newTestProject()
	c := boxClass("Ball")

	zero, err := p.RegisterSpriteClass(c)
	require.NoError(t, err)
	assert.Equal(t, "i-1", zero.ID())
	assert.False(t, zero.IsClone())
	assert.Same(t, actor.Project(p), c.Project())

	got, err := p.InstanceZero(c)
	require.NoError(t, err)
	assert.Same(t, zero, got)

	_, err = p.RegisterSpriteClass(boxClass("Ball"))
	assert.Error(t, err, "duplicate class name")
}

func TestRegisterSpriteClass_RejectsStageAndInvalid(t *testing.T) {
	p := newTestProject()

	_, err := p.RegisterSpriteClass(actor.NewStageClass("Stage", nil))
	assert.True(t, actor.HasCode(err, actor.ErrCodeNotSprite))

	bad := actor.NewSpriteClass("Bad", []actor.Costume{{Name: "x", Width: 0, Height: 1}})
	_, err = p.RegisterSpriteClass(bad)
	assert.True(t, actor.HasCode(err, actor.ErrCodeInvalidClass))
}

func TestRegisterStageClass(t *testing.T) {
	p := newTestProject()
	st, err := p.RegisterStageClass(actor.NewStageClass("Stage", nil))
	require.NoError(t, err)
	assert.Same(t, st, p.Stage())
	assert.Equal(t, "solid-white", st.Appearance())

	_, err = p.RegisterStageClass(actor.NewStageClass("Other", nil))
	assert.Error(t, err)

	assert.Equal(t, []actor.Actor{st}, p.Instances(st.Class()))
}

func TestRegisterSpriteInstance_PublishesCloneStart(t *testing.T) {
	sink := &sinkRecorder{}
	p := newTestProject(WithEventSink(sink))
	c := boxClass("Ball")
	zero, err := p.RegisterSpriteClass(c)
	require.NoError(t, err)

	dup := zero.Copy()
	got, err := p.RegisterSpriteInstance(dup, zero)
	require.NoError(t, err)
	assert.Same(t, dup, got)
	assert.Equal(t, "i-2", got.ID())
	assert.Len(t, p.SpriteInstances(c), 2)

	require.Len(t, sink.got, 1)
	assert.Equal(t, hooks.ChannelSprite, sink.got[0].channel)
	assert.Equal(t, hooks.KeyCloneStart, sink.got[0].key)
	assert.Same(t, got, sink.got[0].target)

	_, err = p.RegisterSpriteInstance(dup, zero)
	assert.Error(t, err, "already registered")
}

func TestUnregisterActorInstance(t *testing.T) {
	p := newTestProject()
	c := boxClass("Ball")
	zero, err := p.RegisterSpriteClass(c)
	require.NoError(t, err)
	dup, err := p.RegisterSpriteInstance(zero.Copy(), zero)
	require.NoError(t, err)

	require.NoError(t, p.UnregisterActorInstance(dup))
	assert.Nil(t, dup.Project())
	assert.Equal(t, []*actor.Sprite{zero}, p.SpriteInstances(c))

	err = p.UnregisterActorInstance(dup)
	assert.True(t, actor.IsNotAttached(err))

	err = p.UnregisterActorInstance(zero)
	assert.True(t, actor.HasCode(err, actor.ErrCodeNotAClone))
}

func TestInstanceZero_UnregisteredClass(t *testing.T) {
	p := newTestProject()
	_, err := p.InstanceZero(boxClass("Ghost"))
	assert.True(t, actor.HasCode(err, actor.ErrCodeNoInstance))
	assert.True(t, actor.IsLookupError(err))
}

func TestInstanceIsTouchingAnyOf(t *testing.T) {
	p := newTestProject()
	ballClass := boxClass("Ball")
	wallClass := boxClass("Wall")
	ball, err := p.RegisterSpriteClass(ballClass)
	require.NoError(t, err)
	wall, err := p.RegisterSpriteClass(wallClass)
	require.NoError(t, err)

	ball.Show()
	wall.Show()
	wall.GoToXY(100, 0)

	touching, err := ball.Touching(wallClass)
	require.NoError(t, err)
	assert.False(t, touching)

	// Edges meet at x=5.
	wall.GoToXY(10, 0)
	touching, err = ball.Touching(wallClass)
	require.NoError(t, err)
	assert.True(t, touching)

	wall.Hide()
	touching, err = ball.Touching(wallClass)
	require.NoError(t, err)
	assert.False(t, touching)

	wall.Show()
	ball.SetSize(0.5)
	touching, err = ball.Touching(wallClass)
	require.NoError(t, err)
	assert.False(t, touching)
}

func TestInstanceIsTouchingAnyOf_SelfExcluded(t *testing.T) {
	p := newTestProject()
	c := boxClass("Ball")
	zero, err := p.RegisterSpriteClass(c)
	require.NoError(t, err)
	zero.Show()

	touching, err := zero.Touching(c)
	require.NoError(t, err)
	assert.False(t, touching)

	dup, err := p.RegisterSpriteInstance(zero.Copy(), zero)
	require.NoError(t, err)
	require.True(t, dup.Shown())

	touching, err = zero.Touching(c)
	require.NoError(t, err)
	assert.True(t, touching)
}

func TestInstanceIsTouchingAnyOf_UnknownTarget(t *testing.T) {
	p := newTestProject()
	zero, err := p.RegisterSpriteClass(boxClass("Ball"))
	require.NoError(t, err)

	_, err = zero.Touching(boxClass("Ghost"))
	assert.True(t, actor.HasCode(err, actor.ErrCodeNoInstance))
}

func TestClassByNameAndSpriteClasses(t *testing.T) {
	p := newTestProject()
	a, b := boxClass("A"), boxClass("B")
	_, err := p.RegisterSpriteClass(a)
	require.NoError(t, err)
	_, err = p.RegisterSpriteClass(b)
	require.NoError(t, err)

	got, ok := p.ClassByName("B")
	require.True(t, ok)
	assert.Same(t, b, got)
	_, ok = p.ClassByName("C")
	assert.False(t, ok)
	assert.Equal(t, []*actor.Class{a, b}, p.SpriteClasses())
}

func TestUUIDv7Generator(t *testing.T) {
	id := UUIDv7Generator{}.Generate()
	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
	assert.NotEqual(t, id, UUIDv7Generator{}.Generate())
}
