package pinning

import (
	"encoding/pem"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"
)

// ResourceLoader resolves named certificate resources from a filesystem.
// Resolved certificates are cached as DER bytes.
type ResourceLoader struct {
	fsys  fs.FS
	root  string
	cache map[string][]byte
	mu    sync.RWMutex
}

// NewResourceLoader creates a loader rooted at dir inside fsys
func NewResourceLoader(fsys fs.FS, dir string) *ResourceLoader {
	if dir == "" {
		dir = "."
	}
	return &ResourceLoader{
		fsys:  fsys,
		root:  dir,
		cache: make(map[string][]byte),
	}
}

// Load resolves a certificate by name. Names without an extension are tried
// as name.cer, name.der, name.crt and name.pem in that order.
func (l *ResourceLoader) Load(name string) ([]byte, error) {
	// Check cache first
	l.mu.RLock()
	if der, ok := l.cache[name]; ok {
		l.mu.RUnlock()
		return der, nil
	}
	l.mu.RUnlock()

	content, err := l.read(name)
	if err != nil {
		return nil, err
	}

	der, err := toDER(content)
	if err != nil {
		return nil, fmt.Errorf("certificate %s: %w", name, err)
	}

	l.mu.Lock()
	l.cache[name] = der
	l.mu.Unlock()

	return der, nil
}

// List returns the names of all certificate resources under the root
func (l *ResourceLoader) List() ([]string, error) {
	var names []string

	err := fs.WalkDir(l.fsys, l.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && isCertificateFile(d.Name()) {
			rel := strings.TrimPrefix(p, strings.TrimSuffix(l.root, "/")+"/")
			names = append(names, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list certificates: %w", err)
	}

	return names, nil
}

func (l *ResourceLoader) read(name string) ([]byte, error) {
	candidates := []string{name}
	if path.Ext(name) == "" {
		candidates = nil
		for _, ext := range certificateExtensions {
			candidates = append(candidates, name+ext)
		}
	}

	for _, c := range candidates {
		content, err := fs.ReadFile(l.fsys, path.Join(l.root, c))
		if err == nil {
			return content, nil
		}
	}
	return nil, fmt.Errorf("failed to load certificate %s: %w", name, fs.ErrNotExist)
}

var certificateExtensions = []string{".cer", ".der", ".crt", ".pem"}

func isCertificateFile(name string) bool {
	ext := path.Ext(name)
	for _, e := range certificateExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// toDER returns the first CERTIFICATE block of PEM input, or the input
// unchanged when it is not PEM encoded.
func toDER(content []byte) ([]byte, error) {
	if len(content) == 0 {
		return nil, fmt.Errorf("empty certificate")
	}

	rest := content
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}
		if block.Type == "CERTIFICATE" {
			return block.Bytes, nil
		}
	}

	if strings.Contains(string(content), "-----BEGIN") {
		return nil, fmt.Errorf("no CERTIFICATE block in PEM data")
	}
	return content, nil
}
