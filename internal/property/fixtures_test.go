package property

import (
	"errors"
	"fmt"
)

// Person exposes name through a getter and keeps isAdult in a bare field.
type Person struct {
	name    string
	isAdult bool
}

func (p *Person) GetName() string { return p.name }

// flags has both boolean getter spellings.
type flags struct{}

func (flags) IsActive() bool  { return true }
func (flags) GetActive() bool { return false }

// order takes the execution context.
type order struct {
	lines int
}

func (o *order) GetTotal(env *Env) int { return o.lines * len(env.Field) }

var errBroken = errors.New("backend unavailable")

type faulty struct{}

func (faulty) GetBroken() (string, error) { return "", errBroken }
func (faulty) GetHealthy() (string, error) { return "ok", nil }
func (faulty) GetExploding() string        { panic("boom") }

// Base is embedded by post.
type Base struct {
	ID string
}

func (b Base) GetTitle() string   { return "title:" + b.ID }
func (b Base) GetSummary() string { return "summary:" + b.ID }

type inner struct {
	note string
}

func (i inner) GetFootnote() string { return "note:" + i.note }
func (i *inner) GetDraft() string   { return "draft:" + i.note }

type post struct {
	Base
	inner
	Slug   string `graphql:"permalink,omitempty"`
	Author *Person
}

// GetSummary shadows Base.GetSummary with a shape the resolver does not accept.
func (p post) GetSummary(limit int) string { return fmt.Sprintf("%d", limit) }

// counter only has a pointer-receiver getter.
type counter struct {
	n int
}

func (c *counter) GetCount() int { return c.n }

// opaque hides everything behind an unexported method.
type opaque struct {
	secret string
}

func (o opaque) code() string { return "code:" + o.secret }

// mismatched names a getter with an unsupported shape.
type mismatched struct{}

func (mismatched) GetWidth(scale int) int { return scale }
func (mismatched) GetMany() (int, int)    { return 1, 2 }

type boolType bool

func (b boolType) IsBoolean() bool { return bool(b) }

const (
	booleanHint boolType = true
	stringHint  boolType = false
)

// shadowed has both a public field and a getter outside its value method set.
type shadowed struct {
	Name string
}

func (*shadowed) GetName() string { return "getter" }
