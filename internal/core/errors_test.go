package core

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"validation", Validationf("title too long"), KindValidation},
		{"not found", NotFoundf("post %d not found", 7), KindNotFound},
		{"conflict", Conflictf("username taken"), KindConflict},
		{"wrapped", fmt.Errorf("outer: %w", Forbiddenf("not a moderator")), KindAuthorization},
		{"plain error", errors.New("boom"), KindInternal},
		{"nil cause internal", Internalf(nil, "oops"), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindValidation, http.StatusBadRequest},
		{KindAuthentication, http.StatusUnauthorized},
		{KindAuthorization, http.StatusForbidden},
		{KindNotFound, http.StatusNotFound},
		{KindConflict, http.StatusConflict},
		{KindUpstream, http.StatusInternalServerError},
		{KindInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			if got := HTTPStatus(tt.kind); got != tt.want {
				t.Errorf("HTTPStatus(%v) = %d, want %d", tt.kind, got, tt.want)
			}
		})
	}
}

func TestErrorMessage(t *testing.T) {
	base := errors.New("connection refused")
	err := Upstreamf(base, "media upload failed")
	if err.Error() != "media upload failed: connection refused" {
		t.Errorf("unexpected message: %s", err.Error())
	}
	if !errors.Is(err, base) {
		t.Error("expected wrapped cause to survive errors.Is")
	}
}
