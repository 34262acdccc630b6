// Package providertest scripts an in-memory browser for tests.
package providertest

import (
	"context"
	"sync"

	"github.com/brogergvhs/crunchymanga/internal/providers"
)

// Driver answers XPath queries from handlers registered per query string.
type Driver struct {
	mu          sync.Mutex
	handlers    map[string]func() []providers.Element
	navigations []string
	closed      bool

	// OnNavigate runs after a navigation is recorded.
	OnNavigate func(url string) error
}

func New() *Driver {
	return &Driver{handlers: map[string]func() []providers.Element{}}
}

// Handle makes xpath resolve to whatever fn returns at query time.
func (d *Driver) Handle(xpath string, fn func() []providers.Element) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[xpath] = fn
}

// Set makes xpath resolve to a fixed element list.
func (d *Driver) Set(xpath string, els ...*Element) {
	list := make([]providers.Element, len(els))
	for i, e := range els {
		list[i] = e
	}
	d.Handle(xpath, func() []providers.Element { return list })
}

func (d *Driver) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	d.mu.Lock()
	d.navigations = append(d.navigations, url)
	hook := d.OnNavigate
	d.mu.Unlock()

	if hook != nil {
		return hook(url)
	}
	return nil
}

func (d *Driver) Locate(ctx context.Context, xpath string) ([]providers.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	fn := d.handlers[xpath]
	d.mu.Unlock()

	if fn == nil {
		return nil, nil
	}
	return fn(), nil
}

func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

func (d *Driver) Navigations() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.navigations...)
}

func (d *Driver) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

// Element is a scripted element. Zero values behave like an empty element.
type Element struct {
	mu sync.Mutex

	Attrs map[string]string
	// StyleFunc, when set, answers computed style lookups.
	StyleFunc func(property string) string
	Styles    map[string]string
	TextValue string
	HTML      string

	OnClick func() error
	OnPress func(key providers.Key) error

	clicks  int
	inputs  []string
	pressed []providers.Key
}

func (e *Element) Attribute(_ context.Context, name string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Attrs[name], nil
}

func (e *Element) Style(_ context.Context, property string) (string, error) {
	e.mu.Lock()
	fn := e.StyleFunc
	v := e.Styles[property]
	e.mu.Unlock()

	if fn != nil {
		return fn(property), nil
	}
	return v, nil
}

func (e *Element) Text(context.Context) (string, error) {
	return e.TextValue, nil
}

func (e *Element) InnerHTML(context.Context) (string, error) {
	return e.HTML, nil
}

func (e *Element) Click(context.Context) error {
	e.mu.Lock()
	e.clicks++
	hook := e.OnClick
	e.mu.Unlock()

	if hook != nil {
		return hook()
	}
	return nil
}

func (e *Element) Input(_ context.Context, text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.inputs = append(e.inputs, text)
	return nil
}

func (e *Element) Press(_ context.Context, key providers.Key) error {
	e.mu.Lock()
	e.pressed = append(e.pressed, key)
	hook := e.OnPress
	e.mu.Unlock()

	if hook != nil {
		return hook(key)
	}
	return nil
}

// SetAttr changes an attribute while a test runs.
func (e *Element) SetAttr(name, value string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.Attrs == nil {
		e.Attrs = map[string]string{}
	}
	e.Attrs[name] = value
}

func (e *Element) Clicks() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clicks
}

func (e *Element) Inputs() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.inputs...)
}

func (e *Element) Pressed() []providers.Key {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]providers.Key(nil), e.pressed...)
}
