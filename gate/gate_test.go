package gate

import "testing"

func typeString(g *Gate, s string) {
	for _, r := range s {
		g.Type(r)
	}
}

func TestSubmitExactMatch(t *testing.T) {
	g := New("open sesame", nil)
	typeString(g, "open sesame")
	if !g.Submit() {
		t.Fatal("expected correct password to unlock")
	}
	if !g.Unlocked() {
		t.Fatal("Unlocked() false after successful submit")
	}
}

func TestSubmitTrimsWhitespace(t *testing.T) {
	g := New("open sesame", nil)
	typeString(g, "  open sesame  ")
	if !g.Submit() {
		t.Fatal("expected trimmed attempt to match")
	}
}

func TestSubmitWrongPasswordClearsBuffer(t *testing.T) {
	g := New("open sesame", nil)
	typeString(g, "wrong")
	if g.Submit() {
		t.Fatal("wrong password accepted")
	}
	if g.Unlocked() {
		t.Fatal("gate unlocked on failure")
	}
	if g.Buffer() != "" {
		t.Errorf("buffer not cleared after failed submit: %q", g.Buffer())
	}

	// Retry still works
	typeString(g, "open sesame")
	if !g.Submit() {
		t.Fatal("retry after failure did not unlock")
	}
}

func TestSubmitCaseSensitive(t *testing.T) {
	g := New("open sesame", nil)
	typeString(g, "Open Sesame")
	if g.Submit() {
		t.Fatal("expected case-sensitive comparison")
	}
}

func TestDefaultPasswordFallback(t *testing.T) {
	g := New("   ", nil)
	typeString(g, DefaultPassword)
	if !g.Submit() {
		t.Fatal("blank configured password should fall back to default")
	}
}

func TestBackspace(t *testing.T) {
	g := New("ab", nil)
	typeString(g, "abc")
	g.Backspace()
	if !g.Submit() {
		t.Fatal("backspace did not remove trailing rune")
	}

	// Backspace on empty buffer is harmless
	g2 := New("x", nil)
	g2.Backspace()
	if g2.Buffer() != "" {
		t.Errorf("unexpected buffer %q", g2.Buffer())
	}
}

func TestUnlockHookFiresOnce(t *testing.T) {
	fired := 0
	g := New("x", nil)
	g.SetUnlockFunc(func() { fired++ })

	typeString(g, "x")
	g.Submit()
	// Second submit while unlocked reports success without re-firing
	if !g.Submit() {
		t.Fatal("submit after unlock should report success")
	}
	if fired != 1 {
		t.Errorf("unlock hook fired %d times, want 1", fired)
	}
}

func TestTypeIgnoredAfterUnlock(t *testing.T) {
	g := New("x", nil)
	typeString(g, "x")
	g.Submit()
	g.Type('z')
	if g.Buffer() != "" {
		t.Errorf("typing after unlock should be ignored, buffer %q", g.Buffer())
	}
}

func TestScreenSequence(t *testing.T) {
	screens := []Screen{
		{ID: "a", Type: ScreenProse},
		{ID: "b", Type: ScreenProse},
		{ID: "c", Type: ScreenPrompt},
	}
	g := New("x", screens)

	if _, ok := g.Current(); ok {
		t.Fatal("Current() should fail before unlock")
	}
	if g.Next() {
		t.Fatal("Next() should fail before unlock")
	}

	typeString(g, "x")
	g.Submit()

	order := []string{"a", "b", "c"}
	for i, want := range order {
		scr, ok := g.Current()
		if !ok {
			t.Fatalf("screen %d missing", i)
		}
		if scr.ID != want {
			t.Fatalf("screen %d: got %q, want %q", i, scr.ID, want)
		}
		more := g.Next()
		if i < len(order)-1 && !more {
			t.Fatalf("Next() ended early at screen %d", i)
		}
		if i == len(order)-1 && more {
			t.Fatal("Next() did not signal exhaustion on last screen")
		}
	}

	if _, ok := g.Current(); ok {
		t.Fatal("Current() should fail after exhaustion")
	}
}

func TestDefaultScreensEndInPrompt(t *testing.T) {
	screens := DefaultScreens()
	if len(screens) == 0 {
		t.Fatal("no default screens")
	}
	last := screens[len(screens)-1]
	if last.Type != ScreenPrompt {
		t.Errorf("final default screen is not a prompt")
	}
	for i, s := range screens[:len(screens)-1] {
		if s.Type != ScreenProse {
			t.Errorf("screen %d (%s) should be prose", i, s.ID)
		}
	}
}
