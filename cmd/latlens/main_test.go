package main

import "testing"

func TestMainWiring(t *testing.T) {
	origExecute := executeCmd
	t.Cleanup(func() {
		executeCmd = origExecute
	})

	called := false
	executeCmd = func() {
		called = true
	}

	main()

	if !called {
		t.Fatalf("expected main to delegate to the root command")
	}
}
