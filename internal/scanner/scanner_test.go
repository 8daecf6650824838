package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specwatch/specwatch/internal/logger"
	"github.com/specwatch/specwatch/pkg/types"
)

func TestRegexScannerSupportsFile(t *testing.T) {
	s := NewRegexScanner()

	assert.True(t, s.SupportsFile(".ts"))
	assert.True(t, s.SupportsFile(".py"))
	assert.True(t, s.SupportsFile(".rs"))
	assert.True(t, s.SupportsFile(".JAVA"))
	assert.False(t, s.SupportsFile(".txt"))
	assert.False(t, s.SupportsFile(""))
}

func TestScanFileJavaScript(t *testing.T) {
	s := NewRegexScanner()

	t.Run("fetch with template literal", func(t *testing.T) {
		usages := s.ScanFile("src/api.ts", "const r = await fetch(`/v1/users/${id}`)")
		require.Len(t, usages, 1)

		u := usages[0]
		assert.Equal(t, "/v1/users/${id}", u.Path)
		assert.Empty(t, u.Method)
		assert.Equal(t, "src/api.ts", u.FilePath)
		assert.Equal(t, 1, u.LineNumber)
		assert.Equal(t, types.DetectionRegex, u.DetectionMethod)
		// Interpolation penalty then client boost: 1.0 * 0.6 * 1.2.
		assert.InDelta(t, 0.72, u.Confidence, 1e-9)
	})

	t.Run("axios method extraction", func(t *testing.T) {
		usages := s.ScanFile("client.js", `axios.get('/api/orders')`)
		require.Len(t, usages, 1)
		assert.Equal(t, "/api/orders", usages[0].Path)
		assert.Equal(t, "GET", usages[0].Method)
		assert.Equal(t, 1.0, usages[0].Confidence)
	})

	t.Run("superagent del normalizes to DELETE", func(t *testing.T) {
		usages := s.ScanFile("client.js", `superagent.del('/api/orders/1')`)
		require.Len(t, usages, 1)
		assert.Equal(t, "DELETE", usages[0].Method)
	})

	t.Run("api wrapper helper", func(t *testing.T) {
		usages := s.ScanFile("client.ts", `return apiPost<User>('/v2/users', body)`)
		require.Len(t, usages, 1)
		assert.Equal(t, "/v2/users", usages[0].Path)
		assert.Equal(t, "POST", usages[0].Method)
	})

	t.Run("match after inline comment is halved", func(t *testing.T) {
		usages := s.ScanFile("client.js", `const x = 1 // fetch('/v1/users')`)
		require.Len(t, usages, 1)
		assert.InDelta(t, 0.5, usages[0].Confidence, 1e-9)
	})

	t.Run("full-line comment is skipped", func(t *testing.T) {
		usages := s.ScanFile("client.js", "// fetch('/v1/users')\n/* axios.get('/v1/users') */")
		assert.Empty(t, usages)
	})
}

func TestScanFilePython(t *testing.T) {
	s := NewRegexScanner()

	t.Run("requests call", func(t *testing.T) {
		usages := s.ScanFile("svc/client.py", `resp = requests.post("/v1/users", json=payload)`)
		require.Len(t, usages, 1)
		assert.Equal(t, "/v1/users", usages[0].Path)
		assert.Equal(t, "POST", usages[0].Method)
	})

	t.Run("client pattern wins over generic literal", func(t *testing.T) {
		// The line matches both the requests pattern and the bare string
		// literal pattern; exactly one usage must come out.
		usages := s.ScanFile("svc/client.py", `requests.get("/v1/items")`)
		require.Len(t, usages, 1)
		assert.Equal(t, "GET", usages[0].Method)
	})

	t.Run("hash comment line is skipped", func(t *testing.T) {
		usages := s.ScanFile("svc/client.py", `# requests.get("/v1/items")`)
		assert.Empty(t, usages)
	})

	t.Run("full URL reduced to path", func(t *testing.T) {
		usages := s.ScanFile("svc/client.py", `requests.get("https://api.acme.com/v1/items")`)
		require.Len(t, usages, 1)
		assert.Equal(t, "/v1/items", usages[0].Path)
	})
}

func TestScanFileOtherLanguages(t *testing.T) {
	s := NewRegexScanner()

	t.Run("csharp async verb normalizes", func(t *testing.T) {
		usages := s.ScanFile("Client.cs", `var resp = await httpClient.GetAsync("/api/invoices");`)
		require.Len(t, usages, 1)
		assert.Equal(t, "GET", usages[0].Method)
		assert.Equal(t, "/api/invoices", usages[0].Path)
	})

	t.Run("java restTemplate verb", func(t *testing.T) {
		usages := s.ScanFile("Client.java", `restTemplate.getForObject("/v1/accounts/{id}", Account.class)`)
		require.Len(t, usages, 1)
		assert.Equal(t, "GET", usages[0].Method)
		assert.Equal(t, "/v1/accounts/{id}", usages[0].Path)
	})

	t.Run("go NewRequest", func(t *testing.T) {
		usages := s.ScanFile("client.go", `req, err := http.NewRequest("POST", "/api/payments", body)`)
		require.Len(t, usages, 1)
		assert.Equal(t, "POST", usages[0].Method)
		assert.Equal(t, "/api/payments", usages[0].Path)
	})

	t.Run("ruby httparty", func(t *testing.T) {
		usages := s.ScanFile("client.rb", `HTTParty.put("/v3/widgets/9")`)
		require.Len(t, usages, 1)
		assert.Equal(t, "PUT", usages[0].Method)
	})

	t.Run("rust reqwest", func(t *testing.T) {
		usages := s.ScanFile("client.rs", `let body = reqwest::get("/v1/feeds").await?;`)
		require.Len(t, usages, 1)
		assert.Equal(t, "GET", usages[0].Method)
	})
}

func TestCandidateFilter(t *testing.T) {
	s := NewRegexScanner()

	tests := []struct {
		name string
		line string
	}{
		{"no version or api segment", `fetch('/users')`},
		{"example word", `fetch('/v1/example/users')`},
		{"placeholder word", `fetch('/api/placeholder')`},
		{"docs word", `fetch('/v1/docs/schema')`},
		{"readme word", `fetch('/api/README.html')`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, s.ScanFile("client.js", tt.line))
		})
	}
}

func TestConfidenceClamped(t *testing.T) {
	s := NewRegexScanner()

	lines := []string{
		"fetch(`/v1/users/${id}`)",
		`axios.get('/api/orders')`,
		`const u = '/v1/things/%s' // fetch(` + "`/v1/other/${x}`)",
		`requests.get("/v1/items?page={n}")`,
	}

	for _, line := range lines {
		for _, file := range []string{"a.js", "a.py"} {
			for _, u := range s.ScanFile(file, line) {
				assert.GreaterOrEqual(t, u.Confidence, 0.0, "line %q", line)
				assert.LessOrEqual(t, u.Confidence, 1.0, "line %q", line)
			}
		}
	}
}

func TestNormalizeMethod(t *testing.T) {
	tests := map[string]string{
		"get":             "GET",
		"GetAsync":        "GET",
		"GetStringAsync":  "GET",
		"PostAsJsonAsync": "POST",
		"del":             "DELETE",
		"DeleteAsync":     "DELETE",
		"patch":           "PATCH",
		"bogus":           "",
	}

	for in, want := range tests {
		assert.Equal(t, want, normalizeMethod(in), "input %q", in)
	}
}

func TestWalkerScanTree(t *testing.T) {
	root := t.TempDir()

	writeFile(t, root, "src/api.ts", "fetch('/v1/users')\naxios.post('/v1/users', body)\n")
	writeFile(t, root, "svc/client.py", `requests.get("/api/items")`+"\n")
	writeFile(t, root, "node_modules/dep/index.js", "fetch('/v1/should-not-appear')\n")
	writeFile(t, root, "README.md", "fetch('/v1/ignored')\n")

	w := NewWalker(NewRegexScanner(), 2, logger.NewNop())
	result, err := w.ScanTree(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, 2, result.FilesScanned)
	require.Equal(t, 3, result.EndpointsFound)

	// Deterministic order: by file path, then line number.
	assert.Equal(t, filepath.Join("src", "api.ts"), result.Usages[0].FilePath)
	assert.Equal(t, 1, result.Usages[0].LineNumber)
	assert.Equal(t, 2, result.Usages[1].LineNumber)
	assert.Equal(t, filepath.Join("svc", "client.py"), result.Usages[2].FilePath)
	assert.Equal(t, "/api/items", result.Usages[2].Path)
}

func TestWalkerToleratesUnreadableEntries(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/api.ts", "fetch('/v1/users')\n")
	require.NoError(t, os.Symlink(filepath.Join(root, "gone.py"), filepath.Join(root, "broken.py")))

	w := NewWalker(NewRegexScanner(), 1, logger.NewNop())
	result, err := w.ScanTree(context.Background(), root)
	require.NoError(t, err)

	// The dangling symlink is skipped; the readable file still scans.
	require.Equal(t, 1, result.EndpointsFound)
	assert.Equal(t, filepath.Join("src", "api.ts"), result.Usages[0].FilePath)
}

func TestWalkerMissingRoot(t *testing.T) {
	w := NewWalker(NewRegexScanner(), 1, logger.NewNop())
	result, err := w.ScanTree(context.Background(), filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	assert.Zero(t, result.FilesScanned)
	assert.Empty(t, result.Usages)
}

func TestWalkerCancellation(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.js", "fetch('/v1/a')\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := NewWalker(NewRegexScanner(), 1, logger.NewNop())
	_, err := w.ScanTree(ctx, root)
	assert.Error(t, err)
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
