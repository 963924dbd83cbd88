package weather

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestTransportErrorString(t *testing.T) {
	err := &TransportError{Upstream: "openweather", StatusCode: 503, Err: errors.New("unavailable")}
	if got := err.Error(); !strings.Contains(got, "status=503") || !strings.Contains(got, "openweather") {
		t.Fatalf("expected status and upstream in error string, got %q", got)
	}

	noStatus := &TransportError{Upstream: "geocoding", Err: errors.New("dial tcp")}
	if strings.Contains(noStatus.Error(), "status=") {
		t.Fatalf("expected no status in error string, got %q", noStatus.Error())
	}
}

func TestErrorChainUnwraps(t *testing.T) {
	root := errors.New("unexpected EOF")
	err := fmt.Errorf("lookup: %w", &ProviderUnavailableError{
		Provider: ProviderSecondary,
		Err:      &DecodeError{Upstream: "darksky", Err: root},
	})

	if !errors.Is(err, root) {
		t.Fatal("expected root error in chain")
	}
	pu, ok := AsProviderUnavailable(err)
	if !ok || pu.Provider != ProviderSecondary {
		t.Fatalf("expected provider unavailable for secondary, got %v", err)
	}
	de, ok := AsDecodeError(err)
	if !ok || de.Upstream != "darksky" {
		t.Fatalf("expected decode error from darksky, got %v", err)
	}
	if _, ok := AsTransportError(err); ok {
		t.Fatal("did not expect transport error in chain")
	}
}
