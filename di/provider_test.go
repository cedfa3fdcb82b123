package di

import (
	"context"
	"strings"
	"testing"

	"github.com/kbukum/dikit/errors"
)

func TestNewProvider_Kinds(t *testing.T) {
	tests := []struct {
		name    string
		factory any
		kind    Kind
	}{
		{"plain", Factory(func(...any) (any, error) { return 1, nil }), KindPlain},
		{"plain bare func", func(...any) (any, error) { return 1, nil }, KindPlain},
		{"resource", ResourceFactory(func(...any) (any, ReleaseFunc, error) { return 1, nil, nil }), KindResource},
		{"context", ContextFactory(func(context.Context, ...any) (any, error) { return 1, nil }), KindContext},
		{"context resource", ContextResourceFactory(func(context.Context, ...any) (any, CtxReleaseFunc, error) { return 1, nil, nil }), KindContextResource},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProvider("thing", Singleton, tt.factory)
			if err != nil {
				t.Fatalf("NewProvider failed: %v", err)
			}
			if p.Kind() != tt.kind {
				t.Errorf("expected kind %s, got %s", tt.kind, p.Kind())
			}
		})
	}
}

func TestNewProvider_InvalidFactory(t *testing.T) {
	_, err := NewProvider("thing", Singleton, "not a function")
	if err == nil {
		t.Fatal("expected error for invalid factory")
	}
	if !errors.HasCode(err, errors.ErrCodeInvalidProvider) {
		t.Errorf("expected INVALID_PROVIDER, got %v", err)
	}
}

func TestNewProvider_EmptyInterface(t *testing.T) {
	_, err := NewProvider("", Singleton, Factory(func(...any) (any, error) { return 1, nil }))
	if err == nil {
		t.Fatal("expected error for empty interface token")
	}
}

func TestNewProvider_UnknownScope(t *testing.T) {
	_, err := NewProvider("thing", Scope(42), Factory(func(...any) (any, error) { return 1, nil }))
	if err == nil {
		t.Fatal("expected error for unknown scope")
	}
}

func TestMustProvider_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for malformed provider")
		}
	}()
	MustProvider("thing", Singleton, 42)
}

func TestProvider_Options(t *testing.T) {
	p := MustProvider("svc", Request, Factory(func(...any) (any, error) { return 1, nil }),
		WithParams(Dep("clock", "clock"), DepDefault("limit", "limit", 10)),
		AsEvent(),
	)
	if len(p.Params()) != 2 {
		t.Fatalf("expected 2 params, got %d", len(p.Params()))
	}
	if p.Params()[0].Name != "clock" || p.Params()[0].HasDefault {
		t.Errorf("unexpected first param: %+v", p.Params()[0])
	}
	if !p.Params()[1].HasDefault || p.Params()[1].Default != 10 {
		t.Errorf("unexpected second param: %+v", p.Params()[1])
	}
	if !p.Event() {
		t.Error("expected event tag")
	}
	if !p.resource() {
		t.Error("event providers should count as resources for eager start")
	}
}

func TestInstance(t *testing.T) {
	val := &struct{ n int }{n: 7}
	p := Instance("cfg", val)
	if p.Scope() != Singleton {
		t.Errorf("expected singleton scope, got %s", p.Scope())
	}
	got, err := p.factory()
	if err != nil {
		t.Fatalf("factory failed: %v", err)
	}
	if got != val {
		t.Error("expected the bound value back")
	}
}

func TestScope_String(t *testing.T) {
	if Singleton.String() != "singleton" || Request.String() != "request" || Transient.String() != "transient" {
		t.Error("unexpected scope names")
	}
	if !strings.Contains(Scope(9).String(), "unknown") {
		t.Error("expected unknown for out-of-range scope")
	}
}

func TestScope_Allows(t *testing.T) {
	if !Singleton.allows(Singleton) {
		t.Error("singleton may depend on singleton")
	}
	if Singleton.allows(Request) || Singleton.allows(Transient) {
		t.Error("singleton must not depend on shorter-lived scopes")
	}
	if !Request.allows(Singleton) || !Request.allows(Request) {
		t.Error("request may depend on request and singleton")
	}
	if Request.allows(Transient) {
		t.Error("request must not depend on transient")
	}
	if !Transient.allows(Singleton) || !Transient.allows(Request) || !Transient.allows(Transient) {
		t.Error("transient may depend on anything")
	}
}

func TestKind_String(t *testing.T) {
	for k, want := range map[Kind]string{
		KindPlain:           "plain",
		KindResource:        "resource",
		KindContext:         "context",
		KindContextResource: "context_resource",
	} {
		if k.String() != want {
			t.Errorf("expected %s, got %s", want, k.String())
		}
	}
}
