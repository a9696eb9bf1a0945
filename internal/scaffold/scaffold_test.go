package scaffold

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dejo1307/sjui/internal/analyzer"
	"github.com/dejo1307/sjui/internal/config"
	"github.com/dejo1307/sjui/internal/project"
)

func newScaffolder(t *testing.T, mode string) (*Scaffolder, string, *project.Recorder) {
	t.Helper()
	cfg := config.Default()
	cfg.Mode = mode
	root := t.TempDir()
	rec := project.NewRecorder()
	return New(cfg, root, rec), root, rec
}

func read(t *testing.T, root, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

func TestGenerate_View(t *testing.T) {
	s, root, rec := newScaffolder(t, config.ModeAll)

	res, err := s.Generate(context.Background(), KindView, "settings/user_profile")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Layouts/settings/user_profile.json",
		"View/settings/UserProfileViewController.swift",
		"View/settings/UserProfileScreen.swift",
	}, res.Files)

	vc := read(t, root, "View/settings/UserProfileViewController.swift")
	assert.Contains(t, vc, "class UserProfileViewController: SJUIViewController {")
	assert.Contains(t, vc, "UserProfileBinding(viewHolder: self)")
	assert.Contains(t, vc, `UIViewCreator.createView("settings/user_profile", target: self)`)
	assert.Contains(t, read(t, root, "View/settings/UserProfileScreen.swift"), "UserProfileView(title: title)")

	an := analyzer.New(analyzer.Options{Root: filepath.Join(root, "Layouts")})
	out, err := an.Analyze(filepath.Join(root, "Layouts", "settings", "user_profile.json"))
	require.NoError(t, err, "scaffolded layout must analyze")
	require.Len(t, out.DataSets, 1)
	assert.Equal(t, "title", out.DataSets[0].Name)

	assert.Equal(t, map[string][]string{"View/settings": {
		"View/settings/UserProfileViewController.swift",
		"View/settings/UserProfileScreen.swift",
	}}, rec.Added)
}

func TestGenerate_ViewUIKitOnly(t *testing.T) {
	s, _, _ := newScaffolder(t, config.ModeUIKit)
	res, err := s.Generate(context.Background(), KindView, "home")
	require.NoError(t, err)
	assert.Equal(t, []string{"Layouts/home.json", "View/HomeViewController.swift"}, res.Files)
}

func TestGenerate_Partial(t *testing.T) {
	s, root, rec := newScaffolder(t, config.ModeUIKit)
	res, err := s.Generate(context.Background(), KindPartial, "common/header")
	require.NoError(t, err)
	assert.Equal(t, []string{"Layouts/common/_header.json"}, res.Files)
	assert.Contains(t, res.Notes[0], `{"include": "common/header"}`)
	assert.Contains(t, read(t, root, "Layouts/common/_header.json"), `"id": "header_container"`)
	assert.Empty(t, rec.Added, "layouts are not project sources")
}

func TestGenerate_Converter(t *testing.T) {
	s, root, _ := newScaffolder(t, config.ModeUIKit)
	res, err := s.Generate(context.Background(), KindConverter, "rating_bar")
	require.NoError(t, err)
	assert.Equal(t, []string{"View/Custom/RatingBar.swift"}, res.Files)
	assert.Contains(t, read(t, root, "View/Custom/RatingBar.swift"), "class RatingBar: SJUIView {")
	require.Len(t, res.Notes, 1)
	assert.Contains(t, res.Notes[0], "RatingBar:\n    class: RatingBar\n    swiftui_view: RatingBarView")
}

func TestGenerate_Adapter(t *testing.T) {
	s, root, _ := newScaffolder(t, config.ModeUIKit)
	res, err := s.Generate(context.Background(), KindAdapter, "news")
	require.NoError(t, err)
	assert.Equal(t, []string{"Layouts/news_cell.json", "View/NewsAdapter.swift"}, res.Files)

	src := read(t, root, "View/NewsAdapter.swift")
	assert.Contains(t, src, "lazy var binding = NewsCellBinding(viewHolder: self)")
	assert.Contains(t, src, `UIViewCreator.createView("news_cell", target: self)`)
	assert.Contains(t, src, "class NewsAdapter: NSObject, UICollectionViewDataSource {")
}

func TestGenerate_RefusesOverwrite(t *testing.T) {
	s, root, _ := newScaffolder(t, config.ModeUIKit)
	ctx := context.Background()
	_, err := s.Generate(ctx, KindPartial, "row")
	require.NoError(t, err)

	p := filepath.Join(root, "Layouts", "_row.json")
	require.NoError(t, os.WriteFile(p, []byte(`{"type":"Label"}`), 0o644))
	_, err = s.Generate(ctx, KindPartial, "row")
	assert.ErrorIs(t, err, ErrExists)
	assert.Equal(t, `{"type":"Label"}`, read(t, root, "Layouts/_row.json"))

	s.Force = true
	_, err = s.Generate(ctx, KindPartial, "_row.json")
	require.NoError(t, err)
	assert.Contains(t, read(t, root, "Layouts/_row.json"), "row_container")
}

func TestGenerate_Errors(t *testing.T) {
	s, _, _ := newScaffolder(t, config.ModeUIKit)
	ctx := context.Background()

	_, err := s.Generate(ctx, "widget", "home")
	assert.ErrorContains(t, err, "unknown scaffold kind")

	for _, name := range []string{"", "9lives", "bad name", "../"} {
		_, err := s.Generate(ctx, KindView, name)
		assert.Error(t, err, name)
	}
}

func TestSplitName(t *testing.T) {
	tests := []struct {
		in, dir, base string
	}{
		{"home", "", "home"},
		{"settings/profile", "settings", "profile"},
		{"common/_header.json", "common", "header"},
		{"../escape/x", "escape", "x"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			dir, base, err := splitName(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.dir, dir)
			assert.Equal(t, tt.base, base)
		})
	}
}
