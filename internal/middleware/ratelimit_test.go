package middleware

import (
	"testing"
)

type fakeCounter int

func (f fakeCounter) Len() int { return int(f) }

func TestCanAddElement(t *testing.T) {
	l := NewLimits(25, 3, 65536, 500, 5, 100, 30, 10)

	if !l.CanAddElement(fakeCounter(2)) {
		t.Error("below the cap should be allowed")
	}
	if l.CanAddElement(fakeCounter(3)) {
		t.Error("at the cap should be rejected")
	}
}

func TestValidateMessageSize(t *testing.T) {
	l := NewLimits(25, 1000, 100, 500, 5, 100, 30, 10)

	if !l.ValidateMessageSize(100) {
		t.Error("message at the limit should pass")
	}
	if l.ValidateMessageSize(101) {
		t.Error("oversized message should fail")
	}
}

func TestIPRateLimitUsesConfiguredBurst(t *testing.T) {
	iprl := NewIPRateLimit(60, 2)

	for i := 0; i < 2; i++ {
		if !iprl.Allow("10.0.0.1") {
			t.Fatalf("connection %d within burst should be allowed", i+1)
		}
	}
	if iprl.Allow("10.0.0.1") {
		t.Error("connection past the burst should be rejected")
	}
	if !iprl.Allow("10.0.0.2") {
		t.Error("other IPs keep their own budget")
	}
}

func TestValidateStyleComplexity(t *testing.T) {
	l := NewLimits(25, 1000, 65536, 500, 2, 4, 30, 10)

	ok := map[string]interface{}{"color": "#fff", "border": map[string]interface{}{"width": "1px"}}
	if err := l.ValidateStyleComplexity(ok); err != nil {
		t.Errorf("simple styles should pass: %v", err)
	}

	deep := map[string]interface{}{"a": map[string]interface{}{"b": map[string]interface{}{"c": map[string]interface{}{"d": "x"}}}}
	if err := l.ValidateStyleComplexity(deep); err == nil {
		t.Error("over-deep styles should fail")
	}

	wide := map[string]interface{}{"a": 1, "b": 2, "c": 3, "d": 4, "e": 5}
	if err := l.ValidateStyleComplexity(wide); err == nil {
		t.Error("over-wide styles should fail")
	}
}
