package logging

import (
	"strings"
	"testing"
)

func BenchmarkMangleFact(b *testing.B) {
	sentence := strings.Repeat("a dog is a kind of animal\n", 100)
	event := AuditEvent{EventType: AuditCommandParsed, Action: "kind of", Target: sentence, Success: true}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = MangleFact(event)
	}
}

func BenchmarkEscapeStringNoEscapes(b *testing.B) {
	input := strings.Repeat("Hello World This is a normal string without special chars.", 100)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = escapeString(input)
	}
}
