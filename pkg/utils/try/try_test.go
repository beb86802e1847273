package try_test

import (
	"errors"
	"testing"

	"github.com/mlopslab/mlopsctl/pkg/utils/try"
)

type fataler struct {
	called bool
	args   []any
}

func (f *fataler) Fatal(args ...any) {
	f.called = true
	f.args = args
}

func TestTo(t *testing.T) {
	t.Run("when error is nil, it is ok", func(t *testing.T) {
		e := try.To(42, nil)

		v, err := e.Get()
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if v != 42 {
			t.Errorf("unmatch value: %d", v)
		}

		f := &fataler{}
		if got := e.OrFatal(f); got != 42 {
			t.Errorf("unmatch value: %d", got)
		}
		if f.called {
			t.Error("Fatal should not be called")
		}

		if got := e.OrDefault(99); got != 42 {
			t.Errorf("unmatch value: %d", got)
		}
	})

	t.Run("when error is not nil, it is no good", func(t *testing.T) {
		expectedErr := errors.New("fake error")
		e := try.To(42, expectedErr)

		_, err := e.Get()
		if !errors.Is(err, expectedErr) {
			t.Errorf("unexpected error: %v", err)
		}

		f := &fataler{}
		e.OrFatal(f)
		if !f.called {
			t.Error("Fatal should be called")
		}

		if got := e.OrDefault(99); got != 99 {
			t.Errorf("unmatch value: %d", got)
		}
	})
}
