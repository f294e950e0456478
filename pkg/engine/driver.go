package engine

import (
	"context"
	"fmt"

	"github.com/flawiddsouza/deploy-helper/pkg/console"
	"github.com/flawiddsouza/deploy-helper/pkg/executor"
	"github.com/flawiddsouza/deploy-helper/pkg/render"
	"github.com/flawiddsouza/deploy-helper/pkg/schema"
	"github.com/flawiddsouza/deploy-helper/pkg/vars"
)

// Driver iterates deployments and their target hosts, resolves each host to
// a local or remote executor, and invokes the task engine per host. Hosts
// are processed one at a time; a remote connection is opened once per host
// and reused for all of its tasks.
type Driver struct {
	Inventory *schema.Inventory
	Renderer  *render.Renderer
	Log       *console.Logger
	// BaseDir is the directory containing the deploy document.
	BaseDir string

	// Connect overrides remote executor construction. Nil means dial SSH
	// with the target's credentials. The returned close function may be nil.
	Connect func(schema.TargetHost) (executor.Executor, func() error, error)
}

// NewDriver wires a driver for the given inventory.
func NewDriver(inv *schema.Inventory, renderer *render.Renderer, log *console.Logger, baseDir string) *Driver {
	return &Driver{
		Inventory: inv,
		Renderer:  renderer,
		Log:       log,
		BaseDir:   baseDir,
	}
}

// Run processes the deployments in order against the shared variable
// context. Every error except an inventory lookup miss aborts the whole
// run; a missing host is reported and the driver moves on.
func (d *Driver) Run(ctx context.Context, deployments []schema.Deployment, vctx *vars.Context) error {
	for i := range deployments {
		if err := d.runDeployment(ctx, &deployments[i], vctx); err != nil {
			return err
		}
	}
	return nil
}

func (d *Driver) runDeployment(ctx context.Context, dep *schema.Deployment, vctx *vars.Context) error {
	d.Log.Deployment(dep.Name)

	// Deployment vars are evaluated once per deployment, before any host.
	for p := dep.Vars.Oldest(); p != nil; p = p.Next() {
		value, err := d.Renderer.RenderValue(p.Value, vctx)
		if err != nil {
			return err
		}
		vctx.Set(p.Key, value)
	}

	hosts := dep.HostList()
	for _, host := range hosts {
		if len(hosts) > 1 {
			d.Log.Host(host)
		}

		target, ok := d.Inventory.Hosts[host]
		if !ok {
			// The single recoverable failure: report and continue with the
			// next host.
			d.Log.Errorf("No server config found for host: %s", host)
			continue
		}

		exec, closeConn, err := d.executorFor(target)
		if err != nil {
			return err
		}

		eng := New(exec, d.Renderer, vctx, d.BaseDir, d.Log)
		runErr := eng.RunTasks(ctx, dep.Tasks, dep.Chdir)

		if closeConn != nil {
			if cerr := closeConn(); cerr != nil && runErr == nil {
				runErr = fmt.Errorf("close connection to %s: %w", host, cerr)
			}
		}
		if runErr != nil {
			return runErr
		}
	}
	return nil
}

// executorFor selects the capability for a target: localhost bypasses all
// remote-session fields.
func (d *Driver) executorFor(target schema.TargetHost) (executor.Executor, func() error, error) {
	if target.IsLocal() {
		return executor.NewLocal(d.Log), nil, nil
	}
	if d.Connect != nil {
		return d.Connect(target)
	}
	client, err := executor.Dial(target)
	if err != nil {
		return nil, nil, err
	}
	return executor.NewRemote(client, d.Log), client.Close, nil
}
