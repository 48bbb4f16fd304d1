// Package docker runs the throwaway containers used by integration tests.
package docker

import (
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"
)

// Container describes a test image built from a Dockerfile at the repo root.
type Container struct {
	Dockerfile    string
	Image         string
	Name          string
	HostPort      string
	ContainerPort string
	// Ready is polled until it returns nil or ReadyTimeout elapses.
	Ready        func() error
	ReadyTimeout time.Duration

	mu       sync.Mutex
	started  bool
	setupErr error
}

// Setup builds and launches the container once; later calls return the first result.
func (c *Container) Setup() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started || c.setupErr != nil {
		return c.setupErr
	}
	c.setupErr = c.start()
	c.started = c.setupErr == nil
	return c.setupErr
}

// Teardown stops the container launched by Setup.
func (c *Container) Teardown() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.setupErr != nil {
		return c.setupErr
	}
	if !c.started {
		return nil
	}
	if err := c.stop(); err != nil {
		return err
	}
	c.started = false
	return nil
}

func (c *Container) start() error {
	if _, err := exec.LookPath("docker"); err != nil {
		return fmt.Errorf("docker executable not found: %w", err)
	}
	_ = c.stop()
	root := RepoRoot()
	if err := run("build", "-f", filepath.Join(root, c.Dockerfile), "-t", c.Image, root); err != nil {
		return err
	}
	if err := run("run", "-d", "--rm", "--name", c.Name, "-p", c.HostPort+":"+c.ContainerPort, c.Image); err != nil {
		return err
	}
	return c.waitReady()
}

func (c *Container) waitReady() error {
	if c.Ready == nil {
		return nil
	}
	timeout := c.ReadyTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if err := c.Ready(); err == nil {
			return nil
		}
		time.Sleep(200 * time.Millisecond)
	}
	return errors.New(c.Name + " container did not become ready in time")
}

func (c *Container) stop() error {
	cmd := exec.Command("docker", "stop", c.Name)
	cmd.Dir = RepoRoot()
	output, err := cmd.CombinedOutput()
	if err != nil {
		if strings.Contains(string(output), "No such container") {
			return nil
		}
		return fmt.Errorf("docker stop failed: %w: %s", err, output)
	}
	return nil
}

func run(args ...string) error {
	cmd := exec.Command("docker", args...)
	cmd.Dir = RepoRoot()
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("docker %s failed: %w: %s", args[0], err, output)
	}
	return nil
}

// RepoRoot returns the module root, where the test Dockerfiles live.
func RepoRoot() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", "..", ".."))
}
