package main

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnatoleLucet/fiber"
)

func TestRenderDemo(t *testing.T) {
	var out bytes.Buffer
	err := renderDemo(&out, fiber.DefaultConfig(), slog.New(slog.DiscardHandler))
	require.NoError(t, err)

	got := out.String()

	for _, s := range append([]string{"mount"}, stepNames()...) {
		assert.Contains(t, got, "== "+s+"\n")
	}

	assert.Contains(t, got, "  append section#app to root\n")
	assert.Contains(t, got, "  update li#1 [class=done]\n")
	assert.Contains(t, got, "  append li#2 to ul#list\n  append li#1 to ul#list\n")
	assert.Contains(t, got, "  remove li#2 from ul#list\n")
	assert.Contains(t, got, "  update h1#title [class=dark]\n")

	final := got[strings.Index(got, "== final tree\n"):]
	assert.Equal(t, `== final tree
<root>
  <section id="app">
    <h1 class="dark" id="title">
      2 todos
    </h1>
    <ul id="list">
      <li class="open" id="3">
        ship it
      </li>
      <li class="done" id="1">
        write reconciler
      </li>
    </ul>
  </section>
</root>
`, final)
}

func stepNames() []string {
	names := make([]string, len(script))
	for i, s := range script {
		names[i] = s.name
	}
	return names
}
