package main

import (
	"time"

	"github.com/go-python/gpython/py"
	"github.com/go-python/gpython/repl"
	"github.com/go-python/gpython/repl/cli"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"

	_ "github.com/2x3systems/gopattern/pypattern"
	_ "github.com/go-python/gpython/stdlib"
)

// go_gpython runs the given script, or the REPL if pathname is empty.
//
// The py context is closed before returning, which closes any catalogs the script left open.
func go_gpython(pathname string) error {
	ctx := py.NewContext(py.DefaultContextOpts())
	defer func() {
		ctx.Close()
		<-ctx.Done()
	}()

	if len(pathname) == 0 {
		cli.RunREPL(repl.New(ctx))
		return nil
	}

	klog.Infof("executing %q", pathname)
	startTime := time.Now()
	if _, err := py.RunFile(ctx, pathname, py.CompileOpts{}, nil); err != nil {
		py.TracebackDump(err)
		return errors.Wrapf(err, "running %q", pathname)
	}
	klog.Infof("%q completed in %v", pathname, time.Since(startTime))
	return nil
}
