package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"go.uber.org/zap"

	"syntaxlab/labs-go/pkg/scan"
)

func runCheck(sess *session, args []string) int {
	targets := args
	if len(targets) == 0 {
		root := sess.manifest.Root()
		if root == "" {
			root = "."
		}
		targets = []string{root}
	}

	scanner, err := scan.NewScanner(scan.WithLogger(sess.log))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer scanner.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sel := scan.Selection{Include: sess.manifest.Check.Include, Exclude: sess.manifest.Check.Exclude}
	var diags []scan.Diagnostic
	scanned := 0
	for _, target := range targets {
		found, count, err := checkTarget(ctx, sess, scanner, target, sel)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		diags = append(diags, found...)
		scanned += count
	}

	for _, d := range diags {
		fmt.Fprintln(os.Stdout, d.String())
	}
	if len(diags) > 0 {
		fmt.Fprintln(os.Stderr, sess.palette.fail.Render(fmt.Sprintf("%d problem(s) in %d file(s)", len(diags), scanned)))
		return 1
	}
	fmt.Fprintln(os.Stderr, sess.palette.pass.Render(fmt.Sprintf("no problems in %d file(s)", scanned)))
	return 0
}

// checkTarget scans a directory tree or one file. Reported paths are
// relative to the working directory when the target is.
func checkTarget(ctx context.Context, sess *session, scanner *scan.Scanner, target string, sel scan.Selection) ([]scan.Diagnostic, int, error) {
	info, err := os.Stat(target)
	if err != nil {
		return nil, 0, fmt.Errorf("check: %w", err)
	}

	root, files := target, []string(nil)
	if info.IsDir() {
		files, err = scan.GoFiles(target, sel)
		if err != nil {
			return nil, 0, err
		}
	} else {
		root = filepath.Dir(target)
		files = []string{filepath.Base(target)}
	}

	revision, err := scan.Revision(root)
	if err != nil {
		sess.log.Warn("could not read revision", zap.String("root", root), zap.Error(err))
	}
	sess.log.Info("checking sources",
		zap.String("root", root),
		zap.String("revision", revision),
		zap.Int("files", len(files)),
	)

	diags, err := scanner.Scan(ctx, root, files)
	if err != nil {
		return nil, 0, err
	}
	for i := range diags {
		diags[i].File = filepath.ToSlash(filepath.Join(root, diags[i].File))
	}
	return diags, len(files), nil
}
