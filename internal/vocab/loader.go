// Package vocab loads vocabulary word lists from YAML files. Categories
// are opaque strings to the quiz core; they exist only so a caller can
// group words by team or lesson.
package vocab

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/powpow088/EnglishWordsT/pkg/quiz"
)

// Word is one vocabulary entry in a word-list file.
type Word struct {
	ID   string `yaml:"id"`
	Text string `yaml:"word"`
	Hint string `yaml:"hint"`
}

// WordList is a YAML-mappable vocabulary file.
type WordList struct {
	Category string `yaml:"category"`
	Words    []Word `yaml:"words"`
}

// Loader loads and optionally hot-reloads word lists from a directory.
type Loader struct {
	dir string

	mu    sync.RWMutex
	lists map[string]*WordList
}

// NewLoader creates a loader for the given directory.
func NewLoader(dir string) *Loader {
	return &Loader{
		dir:   dir,
		lists: make(map[string]*WordList),
	}
}

// LoadAll loads all .yaml and .yml files from the configured directory.
func (l *Loader) LoadAll() error {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return fmt.Errorf("read vocab dir %q: %w", l.dir, err)
	}

	result := make(map[string]*WordList)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		path := filepath.Join(l.dir, entry.Name())
		list, err := loadFile(path)
		if err != nil {
			return fmt.Errorf("load %q: %w", path, err)
		}
		result[list.Category] = list
	}

	l.mu.Lock()
	l.lists = result
	l.mu.Unlock()

	return nil
}

// Categories returns the loaded category names, sorted.
func (l *Loader) Categories() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names := make([]string, 0, len(l.lists))
	for name := range l.lists {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Items returns the words of a category as quiz items.
func (l *Loader) Items(category string) ([]quiz.VocabItem, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	list, ok := l.lists[category]
	if !ok {
		return nil, false
	}

	items := make([]quiz.VocabItem, 0, len(list.Words))
	for _, w := range list.Words {
		items = append(items, quiz.VocabItem{
			ID:         w.ID,
			SourceText: w.Text,
			HintText:   w.Hint,
		})
	}
	return items, true
}

func loadFile(path string) (*WordList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var list WordList
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	if list.Category == "" {
		list.Category = filepath.Base(path)
	}
	for i, w := range list.Words {
		if w.Text == "" {
			return nil, fmt.Errorf("word %d: empty text", i)
		}
	}

	return &list, nil
}

// WatchAndReload watches the vocab directory and reloads on changes.
// Blocks until the done channel is closed.
func (l *Loader) WatchAndReload(done <-chan struct{}) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(l.dir); err != nil {
		return fmt.Errorf("watch dir %q: %w", l.dir, err)
	}

	for {
		select {
		case <-done:
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				ext := filepath.Ext(event.Name)
				if ext == ".yaml" || ext == ".yml" {
					l.LoadAll()
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}
