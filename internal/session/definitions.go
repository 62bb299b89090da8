package session

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LoadError locates a failing sentence in a definitions file.
type LoadError struct {
	Path string
	Line int
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// LoadDefinitions runs every sentence of a definitions file, one per line.
// Blank lines and lines starting with # are skipped. Loading stops at the
// first failing sentence; the sentences before it stay applied. It returns
// the number of sentences executed.
func (s *Session) LoadDefinitions(ctx context.Context, path string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx, path)
}

// include resolves path against the file currently being loaded.
func (s *Session) include(ctx context.Context, path string) error {
	if !filepath.IsAbs(path) && len(s.loading) > 0 {
		path = filepath.Join(filepath.Dir(s.loading[len(s.loading)-1]), path)
	}
	_, err := s.load(ctx, path)
	return err
}

// load reads and executes one file. The caller holds s.mu.
func (s *Session) load(ctx context.Context, path string) (int, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	for _, open := range s.loading {
		if open == abs {
			return 0, fmt.Errorf("include cycle: %s is already being loaded", path)
		}
	}
	if len(s.loading) >= s.cfg.Generation.IncludeDepth {
		return 0, fmt.Errorf("includes nested deeper than %d at %s", s.cfg.Generation.IncludeDepth, path)
	}

	f, err := os.Open(abs)
	if err != nil {
		return 0, fmt.Errorf("failed to open definitions: %w", err)
	}
	defer f.Close()

	s.loading = append(s.loading, abs)
	s.parser.Push(abs)
	defer func() {
		s.parser.Pop()
		s.loading = s.loading[:len(s.loading)-1]
	}()

	count := 0
	line := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		if _, err := s.execute(ctx, text); err != nil {
			s.audit.Load(path, count, false, err.Error())
			return count, &LoadError{Path: path, Line: line, Err: err}
		}
		count++
	}
	if err := scanner.Err(); err != nil {
		return count, fmt.Errorf("failed to read %s: %w", path, err)
	}

	s.audit.Load(path, count, true, "")
	return count, nil
}
