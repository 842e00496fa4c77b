package domain

import (
	"errors"
	"testing"
)

func TestDraftValidate(t *testing.T) {
	tests := []struct {
		name    string
		draft   Draft
		wantMsg string
	}{
		{name: "valid https", draft: Draft{Title: "Go", URL: "https://go.dev"}},
		{name: "valid with path", draft: Draft{Title: "Docs", URL: "https://go.dev/doc/effective_go"}},
		{name: "valid mailto", draft: Draft{Title: "Mail", URL: "mailto:someone@example.com"}},
		{name: "padded input", draft: Draft{Title: "  Go  ", URL: "  https://go.dev  "}},
		{name: "empty title", draft: Draft{Title: "", URL: "https://go.dev"}, wantMsg: MsgRequiredFields},
		{name: "blank title", draft: Draft{Title: "   ", URL: "https://go.dev"}, wantMsg: MsgRequiredFields},
		{name: "empty url", draft: Draft{Title: "Go", URL: ""}, wantMsg: MsgRequiredFields},
		{name: "relative url", draft: Draft{Title: "Go", URL: "go.dev"}, wantMsg: MsgInvalidURL},
		{name: "path only", draft: Draft{Title: "Go", URL: "/doc"}, wantMsg: MsgInvalidURL},
		{name: "scheme only", draft: Draft{Title: "Go", URL: "https://"}, wantMsg: MsgInvalidURL},
		{name: "garbage", draft: Draft{Title: "Go", URL: "ht tp://%%%"}, wantMsg: MsgInvalidURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.draft.Normalize().Validate()
			if tt.wantMsg == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want %q", tt.wantMsg)
			}
			if KindOf(err) != KindValidation {
				t.Errorf("KindOf() = %v, want validation", KindOf(err))
			}
			if got := UserMessage(err); got != tt.wantMsg {
				t.Errorf("UserMessage() = %q, want %q", got, tt.wantMsg)
			}
		})
	}
}

func TestDraftNormalize(t *testing.T) {
	got := Draft{Title: "\t Go \n", URL: " https://go.dev "}.Normalize()
	if got.Title != "Go" || got.URL != "https://go.dev" {
		t.Errorf("Normalize() = %+v", got)
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind Kind
		want string
	}{
		{name: "auth", err: NewAuthError(MsgLoginRequired), kind: KindAuth, want: MsgLoginRequired},
		{name: "store", err: NewStoreError("duplicate key", errors.New("pg: 23505")), kind: KindStore, want: "duplicate key"},
		{name: "wrapped store", err: errWrap(NewStoreError("quota exceeded", nil)), kind: KindStore, want: "quota exceeded"},
		{name: "plain error", err: errors.New("boom"), kind: KindUnexpected, want: MsgUnexpected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.kind {
				t.Errorf("KindOf() = %v, want %v", got, tt.kind)
			}
			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("UserMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func errWrap(err error) error {
	return &wrapped{err}
}

type wrapped struct{ err error }

func (w *wrapped) Error() string { return "outer: " + w.err.Error() }
func (w *wrapped) Unwrap() error { return w.err }

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name string
		user *User
		want string
	}{
		{name: "full name", user: &User{Email: "ada@example.com", FullName: "Ada Lovelace"}, want: "Ada Lovelace"},
		{name: "email local part", user: &User{Email: "ada@example.com"}, want: "ada"},
		{name: "nil user", user: nil, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.user.DisplayName(); got != tt.want {
				t.Errorf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}
