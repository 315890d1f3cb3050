package report

import (
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// EvidencePack renders a browsable HTML review page for a result CSV:
// one section per image pairing the original with the edited output,
// with the edit plan and critic verdict alongside. Images are copied
// into an assets directory so the pack is self-contained.
type EvidencePack struct {
	// ProjectRoot resolves relative image paths found in CSVs.
	ProjectRoot string

	// OutputDir receives one pack directory per CSV.
	OutputDir string
}

type evidencePair struct {
	Index        int
	TargetObject string
	EditPlan     string
	CriticNotes  string
	IsRealistic  bool
	IsMinimal    bool
	InputSrc     string
	OutputSrc    string
	InputPath    string
	OutputPath   string
}

type evidencePage struct {
	Attribute string
	SourceCSV string
	BuiltAt   string
	Pairs     []evidencePair
}

// Build renders the pack for one CSV and returns the index.html path.
func (p *EvidencePack) Build(csvPath string) (string, error) {
	rows, err := ReadCSV(csvPath)
	if err != nil {
		return "", err
	}

	stem := strings.TrimSuffix(filepath.Base(csvPath), filepath.Ext(csvPath))
	packDir := filepath.Join(p.OutputDir, stem)
	assetsDir := filepath.Join(packDir, "assets")
	if err := os.MkdirAll(assetsDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create pack dir: %w", err)
	}

	page := evidencePage{
		Attribute: attributeLabel(stem),
		SourceCSV: csvPath,
		BuiltAt:   time.Now().UTC().Format("2006-01-02 15:04 UTC"),
	}
	for i, row := range rows {
		pair := evidencePair{
			Index:        i + 1,
			TargetObject: orDefault(row.PlannerTargetObject, "unspecified object"),
			EditPlan:     orDefault(row.PlannerEditPlan, "No edit plan recorded."),
			CriticNotes:  orDefault(row.CriticNotes, "No critic notes recorded."),
			IsRealistic:  row.CriticIsRealistic,
			IsMinimal:    row.CriticIsMinimalEdit,
			InputPath:    row.InputImagePath,
			OutputPath:   row.OutputImagePath,
		}
		pair.InputSrc = p.copyAsset(row.InputImagePath, assetsDir, fmt.Sprintf("%02d_original", i+1))
		pair.OutputSrc = p.copyAsset(row.OutputImagePath, assetsDir, fmt.Sprintf("%02d_edited", i+1))
		page.Pairs = append(page.Pairs, pair)
	}

	indexPath := filepath.Join(packDir, "index.html")
	f, err := os.Create(indexPath)
	if err != nil {
		return "", fmt.Errorf("failed to create index.html: %w", err)
	}
	defer f.Close()

	if err := packTemplate.Execute(f, page); err != nil {
		return "", fmt.Errorf("failed to render evidence pack: %w", err)
	}
	return indexPath, nil
}

// copyAsset copies an image into the pack and returns its relative src,
// or empty when the source is missing.
func (p *EvidencePack) copyAsset(raw, assetsDir, baseName string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	source := raw
	if !filepath.IsAbs(source) && p.ProjectRoot != "" {
		source = filepath.Join(p.ProjectRoot, source)
	}

	suffix := strings.ToLower(filepath.Ext(source))
	if suffix == "" {
		suffix = ".jpg"
	}
	dest := filepath.Join(assetsDir, baseName+suffix)
	if err := copyFile(source, dest); err != nil {
		return ""
	}
	return "assets/" + filepath.Base(dest)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}

// attributeLabel derives a human-readable attribute name from a CSV
// file stem.
func attributeLabel(stem string) string {
	for _, prefix := range []string{"counterfactual_results_", "results_"} {
		if strings.HasPrefix(stem, prefix) {
			stem = strings.TrimPrefix(stem, prefix)
			break
		}
	}
	label := strings.TrimSpace(strings.ReplaceAll(stem, "_", " "))
	if label == "" {
		return "counterfactual attribute"
	}
	return label
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

// Index writes a top-level index linking every built pack.
func (p *EvidencePack) Index(packPaths []string) (string, error) {
	type entry struct {
		Href  string
		Label string
	}
	var entries []entry
	for _, packPath := range packPaths {
		rel, err := filepath.Rel(p.OutputDir, packPath)
		if err != nil {
			rel = packPath
		}
		label := strings.ReplaceAll(filepath.Dir(rel), "_", " ")
		entries = append(entries, entry{Href: filepath.ToSlash(rel), Label: label})
	}

	indexPath := filepath.Join(p.OutputDir, "index.html")
	f, err := os.Create(indexPath)
	if err != nil {
		return "", fmt.Errorf("failed to create pack index: %w", err)
	}
	defer f.Close()

	if err := indexTemplate.Execute(f, entries); err != nil {
		return "", fmt.Errorf("failed to render pack index: %w", err)
	}
	return indexPath, nil
}

var packTemplate = template.Must(template.New("pack").Parse(`<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>Evidence Pack - {{.Attribute}}</title>
  <style>
    :root { --ink: #1d1b17; --muted: #5f594f; --line: #d8d0c2; --good: #2e7d32; --bad: #b71c1c; }
    body { margin: 0; font-family: sans-serif; color: var(--ink); background: #f4f1ea; line-height: 1.45; }
    .wrap { width: min(1140px, 92vw); margin: 0 auto; padding: 40px 0 64px; }
    .hero { background: #fffdf7; border: 1px solid var(--line); border-radius: 20px; padding: 28px 30px; margin-bottom: 24px; }
    h1 { margin: 8px 0 10px; font-size: clamp(30px, 5vw, 46px); }
    .hero-meta { color: var(--muted); font-size: 14px; margin: 0; }
    .pair { background: #fffdfa; border: 1px solid var(--line); border-radius: 18px; padding: 18px; margin-bottom: 18px; }
    .pair-head { display: flex; justify-content: space-between; gap: 14px; margin-bottom: 12px; }
    .pair-id { font-size: 12px; text-transform: uppercase; color: var(--muted); font-weight: 700; margin: 0 0 4px; }
    .pair-subtitle { margin: 0; font-size: 18px; font-weight: 700; }
    .chip { border-radius: 999px; border: 1px solid var(--line); background: #fff; padding: 5px 10px; font-size: 12px; color: var(--muted); }
    .chip.good { color: var(--good); background: #edf8ee; }
    .chip.bad { color: var(--bad); background: #fdeeee; }
    .pair-grid { display: grid; grid-template-columns: 1fr 1fr; gap: 12px; margin-bottom: 12px; }
    figure { margin: 0; border: 1px solid var(--line); border-radius: 14px; overflow: hidden; background: #f7f2ea; }
    figcaption { padding: 10px 12px 8px; font-weight: 700; border-bottom: 1px solid var(--line); }
    figure img { display: block; width: 100%; max-height: 410px; object-fit: contain; background: #0f0e0c; }
    .image-path { margin: 0; padding: 8px 12px 10px; font-size: 11px; color: var(--muted); word-break: break-all; }
    .missing-box { min-height: 240px; display: grid; place-items: center; border: 2px dashed var(--line); margin: 12px; border-radius: 10px; color: var(--muted); background: #fff; }
    .description { border: 1px solid var(--line); border-radius: 12px; padding: 12px 14px; background: #fff; }
    .description h3 { margin: 0 0 6px; font-size: 12px; text-transform: uppercase; color: #b85d2a; }
    .description p { margin: 0 0 10px; }
    @media (max-width: 920px) { .pair-grid { grid-template-columns: 1fr; } }
  </style>
</head>
<body>
  <main class="wrap">
    <section class="hero">
      <p class="hero-meta">Streetview Counterfactual Evidence Pack</p>
      <h1>{{.Attribute}}</h1>
      <p class="hero-meta">Source CSV: {{.SourceCSV}}</p>
      <p class="hero-meta">Pairs: {{len .Pairs}} | Built: {{.BuiltAt}}</p>
    </section>
    {{range .Pairs}}
    <section class="pair">
      <header class="pair-head">
        <div>
          <p class="pair-id">Pair {{printf "%02d" .Index}}</p>
          <p class="pair-subtitle">Edited object: {{.TargetObject}}</p>
        </div>
        <div>
          {{if .IsRealistic}}<span class="chip good">Realistic: Yes</span>{{else}}<span class="chip bad">Realistic: No</span>{{end}}
          {{if .IsMinimal}}<span class="chip good">Minimal: Yes</span>{{else}}<span class="chip bad">Minimal: No</span>{{end}}
        </div>
      </header>
      <div class="pair-grid">
        <figure>
          <figcaption>Original</figcaption>
          {{if .InputSrc}}<img src="{{.InputSrc}}" alt="original" loading="lazy" />{{else}}<div class="missing-box">Image not found</div>{{end}}
          <p class="image-path">{{.InputPath}}</p>
        </figure>
        <figure>
          <figcaption>Edited</figcaption>
          {{if .OutputSrc}}<img src="{{.OutputSrc}}" alt="edited" loading="lazy" />{{else}}<div class="missing-box">Image not found</div>{{end}}
          <p class="image-path">{{.OutputPath}}</p>
        </figure>
      </div>
      <div class="description">
        <h3>Description</h3>
        <p>{{.EditPlan}}</p>
        <h3>Critic Notes</h3>
        <p>{{.CriticNotes}}</p>
      </div>
    </section>
    {{end}}
  </main>
</body>
</html>
`))

var indexTemplate = template.Must(template.New("index").Parse(`<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>Evidence Packs</title>
  <style>
    body { font-family: sans-serif; margin: 0; background: #f4f1ea; color: #1d1b17; }
    main { width: min(800px, 92vw); margin: 40px auto; background: #fffdfa; border: 1px solid #d8d0c2; border-radius: 16px; padding: 20px 24px; }
    a { color: #9c4717; font-weight: 700; text-decoration: none; }
    a:hover { text-decoration: underline; }
    li { margin: 10px 0; }
  </style>
</head>
<body>
  <main>
    <h1>Evidence Packs</h1>
    <ul>
      {{range .}}<li><a href="{{.Href}}">{{.Label}}</a></li>{{end}}
    </ul>
  </main>
</body>
</html>
`))
