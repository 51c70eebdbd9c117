package zdll

import (
	"strings"
	"testing"
)

func TestSuccessSetOk(t *testing.T) {
	if !DefaultSuccessSet.Ok(0) || !DefaultSuccessSet.Ok(1) {
		t.Error("expected both success conventions accepted by default")
	}
	if DefaultSuccessSet.Ok(-1) || DefaultSuccessSet.Ok(2) {
		t.Error("expected failure codes rejected")
	}
	strict := SuccessSet{1}
	if strict.Ok(0) {
		t.Error("expected raw 0 rejected under success set {1}")
	}
}

func TestSuccessSetErr(t *testing.T) {
	if err := DefaultSuccessSet.Err(0); err != nil {
		t.Errorf("expected nil for a success code, got %v", err)
	}
	err := DefaultSuccessSet.Err(4)
	ce, ok := err.(CodeError)
	if !ok {
		t.Fatalf("expected CodeError, got %T", err)
	}
	if int(ce) != 4 {
		t.Errorf("expected code 4, got %d", int(ce))
	}
}

func TestCodeErrorNames(t *testing.T) {
	if s := CodeError(-1).Error(); !strings.Contains(s, "ZD_ERR_NO_DEVICE") {
		t.Errorf("expected named error, got %q", s)
	}
	if s := CodeError(999).Error(); !strings.Contains(s, "UNKNOWN_ERROR_CODE") {
		t.Errorf("expected unknown code label, got %q", s)
	}
}
