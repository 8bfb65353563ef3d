// raycam: ray-cast CAM keypoint generator
//
// Loads an STL model, runs the default contour and clearing pipeline over
// it and prints the keypoint count of every task. Exports configured in
// ~/.raycam/config.yaml are written afterwards. Tools from
// ~/.raycam/tools.json are registered after the configured ones.
//
// Build:
//   go build -o raycam ./cmd/raycam
//
// Usage:
//   raycam <stl_file>
//   raycam init    write default config.yaml and tools.json if missing

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/piwi3910/raycam/internal/engine"
	"github.com/piwi3910/raycam/internal/export"
	"github.com/piwi3910/raycam/internal/geometry"
	"github.com/piwi3910/raycam/internal/importer"
	"github.com/piwi3910/raycam/internal/job"
	"github.com/piwi3910/raycam/internal/logger"
	"github.com/piwi3910/raycam/internal/model"
	"github.com/piwi3910/raycam/internal/project"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <stl_file> | init\n", filepath.Base(os.Args[0]))
		os.Exit(1)
	}

	if os.Args[1] == "init" {
		if err := initFiles(project.DefaultConfigPath(), project.DefaultToolLibraryPath(), os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	cfg, err := project.LoadAppConfig(project.DefaultConfigPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	logger.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logger.ParseLevel(cfg.LogLevel),
	})))

	tools, err := project.LoadTools(cfg, project.DefaultToolLibraryPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: loading tools: %v\n", err)
		os.Exit(1)
	}

	if err := run(os.Args[1], cfg, tools, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// initFiles writes the default config and tool library unless they exist.
func initFiles(cfgPath, toolsPath string, out io.Writer) error {
	if _, err := os.Stat(cfgPath); err == nil {
		fmt.Fprintf(out, "kept %s\n", cfgPath)
	} else {
		if err := project.SaveAppConfig(cfgPath, model.DefaultAppConfig()); err != nil {
			return err
		}
		fmt.Fprintf(out, "wrote %s\n", cfgPath)
	}
	if _, err := os.Stat(toolsPath); err == nil {
		fmt.Fprintf(out, "kept %s\n", toolsPath)
		return nil
	}
	if err := project.SaveToolLibrary(toolsPath, model.DefaultToolLibrary()); err != nil {
		return err
	}
	fmt.Fprintf(out, "wrote %s\n", toolsPath)
	return nil
}

// run loads the model at path, builds the pipeline described by cfg with
// the given tools registered and writes the per-task summary to out.
func run(path string, cfg model.AppConfig, tools model.ToolLibrary, out io.Writer) error {
	log := logger.Logger()

	res, err := importer.ImportSTL(path)
	if err != nil {
		return err
	}
	for _, w := range res.Warnings {
		log.Warn("import", "file", path, "warning", w)
	}
	mesh := res.Mesh

	if cfg.ScaleToUnit {
		if err := importer.ScaleToUnit(mesh); err != nil {
			return err
		}
	}
	var minZ, maxZ float64
	if cfg.CenterMesh {
		minZ, maxZ, err = importer.CenterOnXY(mesh)
	} else {
		var b model.Bounds
		b, err = geometry.ComputeBounds(mesh)
		minZ, maxZ = b.Min.Z, b.Max.Z
	}
	if err != nil {
		return err
	}

	j := job.New()
	if err := j.SetTargetMesh(mesh); err != nil {
		return err
	}
	for _, t := range tools.Tools {
		j.Tools().Add(t)
	}

	tasks, err := engine.DefaultPipeline(minZ, maxZ, cfg)
	if err != nil {
		return err
	}
	for _, t := range tasks {
		j.AddTask(t)
	}

	log.Info("building job", "id", j.ID(), "file", path,
		"vertices", mesh.VertexCount(), "triangles", mesh.TriangleCount(), "tasks", len(tasks), "tools", j.Tools().ToolNames())

	shared := job.NewShared(j)
	if err := <-shared.BuildAsync(); err != nil {
		return err
	}

	var report export.Report
	err = shared.With(func(j *job.Job) error {
		report = export.NewReport(j, filepath.Base(path))
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "job %s: %s (%d triangles)\n", report.JobID, report.Source, report.Triangles)
	for i, t := range report.Tasks {
		fmt.Fprintf(out, "  %d. %-18s tool %d  %d keypoints  [%s]\n", i+1, t.Name, t.ToolID, len(t.Keypoints), t.Detail)
	}
	fmt.Fprintf(out, "total: %d keypoints\n", report.TotalKeypoints())

	return writeExports(cfg.Export, report, out)
}

func writeExports(cfg model.ExportConfig, report export.Report, out io.Writer) error {
	if !cfg.Any() {
		return nil
	}
	if cfg.XLSX != "" {
		if err := export.ExportXLSX(cfg.XLSX, report); err != nil {
			return fmt.Errorf("xlsx export: %w", err)
		}
		fmt.Fprintf(out, "wrote %s\n", cfg.XLSX)
	}
	if cfg.DXF != "" {
		if err := export.ExportDXF(cfg.DXF, report, export.DefaultNormalLength); err != nil {
			return fmt.Errorf("dxf export: %w", err)
		}
		fmt.Fprintf(out, "wrote %s\n", cfg.DXF)
	}
	if cfg.PDF != "" {
		if err := export.ExportPDF(cfg.PDF, report); err != nil {
			return fmt.Errorf("pdf export: %w", err)
		}
		fmt.Fprintf(out, "wrote %s\n", cfg.PDF)
	}
	return nil
}
