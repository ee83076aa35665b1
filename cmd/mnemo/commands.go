package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jward/mnemo"
	"github.com/jward/mnemo/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize memory tracking for the current project",
	Args:  cobra.NoArgs,
	RunE:  runInit,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show memory statistics",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

var queryCmd = &cobra.Command{
	Use:   "query <pattern>",
	Short: "Find entities by name substring",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuery,
}

var flagFile string

var analyzeCmd = &cobra.Command{
	Use:   "analyze <path>",
	Short: "Analyze a file or directory and update memory",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset project memory",
	Long:  "Deletes the memory database. The next init or analyze starts from an empty snapshot.",
	Args:  cobra.NoArgs,
	RunE:  runReset,
}

func init() {
	queryCmd.Flags().StringVar(&flagFile, "file", "", "list entities in an exact file path instead of matching by name")
}

// openEngine resolves the project root and database path, ensures the
// directory exists, and creates the Engine with the configured globs.
func openEngine(mustExist bool) (*mnemo.Engine, string, string, error) {
	root, err := projectRoot()
	if err != nil {
		return nil, "", "", err
	}
	dbPath, err := resolveDBPath(root)
	if err != nil {
		return nil, "", "", err
	}
	if mustExist {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, "", "", fmt.Errorf("memory not initialized: %s (run 'mnemo init' first)", dbPath)
		}
	}
	if err := ensureDBDir(dbPath); err != nil {
		return nil, "", "", err
	}

	cfg, err := config.Load(root)
	if err != nil {
		return nil, "", "", err
	}
	engine, err := mnemo.New(dbPath, mnemo.WithPatterns(cfg.Include, cfg.Exclude))
	if err != nil {
		return nil, "", "", err
	}
	return engine, root, dbPath, nil
}

func runInit(cmd *cobra.Command, args []string) error {
	engine, root, dbPath, err := openEngine(false)
	if err != nil {
		return outputError("init", err)
	}
	defer engine.Close()

	if err := engine.Init(root); err != nil {
		return outputError("init", err)
	}
	fmt.Fprintf(os.Stderr, "Initialized project memory\nProject: %s\nDatabase: %s\n", root, dbPath)
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	engine, root, dbPath, err := openEngine(true)
	if err != nil {
		return outputError("status", err)
	}
	defer engine.Close()

	entities, relationships, files, err := engine.Stats()
	if err != nil {
		return outputError("status", err)
	}
	return outputResult(CLIResult{
		Command: "status",
		Results: CLIStats{
			ProjectPath:       root,
			Database:          dbPath,
			EntityCount:       entities,
			RelationshipCount: relationships,
			FileCount:         files,
		},
	})
}

func runQuery(cmd *cobra.Command, args []string) error {
	engine, _, _, err := openEngine(true)
	if err != nil {
		return outputError("query", err)
	}
	defer engine.Close()

	var entities []*mnemo.Entity
	if flagFile != "" {
		path, err := filepath.Abs(flagFile)
		if err != nil {
			return outputError("query", err)
		}
		entities, err = engine.EntitiesInFile(path)
		if err != nil {
			return outputError("query", err)
		}
	} else {
		entities, err = engine.FindByName(args[0])
		if err != nil {
			return outputError("query", err)
		}
	}
	return outputResult(CLIResult{Command: "query", Results: toCLIEntities(entities)})
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	engine, root, _, err := openEngine(false)
	if err != nil {
		return outputError("analyze", err)
	}
	defer engine.Close()

	target, err := filepath.Abs(args[0])
	if err != nil {
		return outputError("analyze", err)
	}
	info, err := os.Stat(target)
	if err != nil {
		return outputError("analyze", err)
	}

	var res *mnemo.AnalysisResult
	if info.IsDir() {
		res, err = engine.AnalyzeDirectory(cmd.Context(), root, target)
	} else {
		res, err = engine.AnalyzeFile(cmd.Context(), root, target)
	}
	if err != nil {
		return outputError("analyze", err)
	}
	return outputResult(CLIResult{
		Command: "analyze",
		Results: CLIAnalysis{
			Path:          target,
			FilesAnalyzed: res.FilesAnalyzed,
			FilesSkipped:  res.FilesSkipped,
			Entities:      toCLIEntities(res.Entities),
		},
	})
}

func runReset(cmd *cobra.Command, args []string) error {
	root, err := projectRoot()
	if err != nil {
		return outputError("reset", err)
	}
	dbPath, err := resolveDBPath(root)
	if err != nil {
		return outputError("reset", err)
	}

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Fprintln(os.Stderr, "No memory database found to reset")
		return nil
	}
	if err := os.Remove(dbPath); err != nil {
		return outputError("reset", err)
	}
	// WAL sidecar files go with the database.
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(dbPath + suffix); err != nil && !os.IsNotExist(err) {
			return outputError("reset", err)
		}
	}
	fmt.Fprintf(os.Stderr, "Memory database deleted: %s\n", dbPath)
	return nil
}
