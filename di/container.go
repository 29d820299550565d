// Package di is a small dependency-injection container wiring
// config.Config -> glog.StructuredLogger -> engine.Engine (and the
// management/mobile/plugin facades built on top of it) for host programs,
// avoiding manual constructor threading.
package di

import (
	"context"
	"fmt"
	"os"
	"reflect"
	"sync"

	"github.com/GoFeGroup/keymagic-go/config"
	"github.com/GoFeGroup/keymagic-go/core"
	"github.com/GoFeGroup/keymagic-go/engine"
	"github.com/GoFeGroup/keymagic-go/glog"
	"github.com/GoFeGroup/keymagic-go/management"
	"github.com/GoFeGroup/keymagic-go/mobile"
	"github.com/GoFeGroup/keymagic-go/plugin"
)

// Container represents a dependency injection container
type Container struct {
	services  map[string]interface{}
	factories map[string]Factory
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
}

// Factory represents a factory function for creating services
type Factory func(container *Container) (interface{}, error)

// NewContainer creates a new dependency injection container
func NewContainer() *Container {
	ctx, cancel := context.WithCancel(context.Background())
	return &Container{
		services:  make(map[string]interface{}),
		factories: make(map[string]Factory),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Register registers a service with the container
func (c *Container) Register(name string, service interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.services[name] = service
}

// RegisterFactory registers a factory function for creating services
func (c *Container) RegisterFactory(name string, factory Factory) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.factories[name] = factory
}

// Get retrieves a service from the container, instantiating it from its
// factory (and caching the result) on first access.
func (c *Container) Get(name string) (interface{}, error) {
	c.mu.RLock()
	if service, exists := c.services[name]; exists {
		c.mu.RUnlock()
		return service, nil
	}
	factory, exists := c.factories[name]
	c.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("service '%s' not found", name)
	}

	// The factory runs without the lock held, since factories resolve
	// their own dependencies through c.Get.
	service, err := factory(c)
	if err != nil {
		return nil, fmt.Errorf("failed to create service '%s': %w", name, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, exists := c.services[name]; exists {
		return existing, nil
	}
	c.services[name] = service
	return service, nil
}

// GetTyped retrieves a service with type assertion
func (c *Container) GetTyped(name string, target interface{}) error {
	service, err := c.Get(name)
	if err != nil {
		return err
	}

	targetValue := reflect.ValueOf(target)
	if targetValue.Kind() != reflect.Ptr {
		return fmt.Errorf("target must be a pointer")
	}

	serviceValue := reflect.ValueOf(service)
	if !serviceValue.Type().AssignableTo(targetValue.Elem().Type()) {
		return fmt.Errorf("service type %s is not assignable to target type %s",
			serviceValue.Type(), targetValue.Elem().Type())
	}

	targetValue.Elem().Set(serviceValue)
	return nil
}

// Has checks if a service exists in the container
func (c *Container) Has(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, exists := c.services[name]
	if !exists {
		_, exists = c.factories[name]
	}
	return exists
}

// Remove removes a service from the container
func (c *Container) Remove(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.services, name)
	delete(c.factories, name)
}

// Clear removes all services from the container
func (c *Container) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.services = make(map[string]interface{})
	c.factories = make(map[string]Factory)
}

// List returns all registered service names
func (c *Container) List() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.services)+len(c.factories))
	for name := range c.services {
		names = append(names, name)
	}
	for name := range c.factories {
		if _, exists := c.services[name]; !exists {
			names = append(names, name)
		}
	}
	return names
}

// Close closes the container, calling Close() on any instantiated service
// that implements it.
func (c *Container) Close() error {
	c.cancel()

	c.mu.RLock()
	services := make([]interface{}, 0, len(c.services))
	for _, service := range c.services {
		services = append(services, service)
	}
	c.mu.RUnlock()

	for _, service := range services {
		if closer, ok := service.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil {
				return fmt.Errorf("failed to close service: %w", err)
			}
		}
	}

	return nil
}

// Context returns the container's context
func (c *Container) Context() context.Context {
	return c.ctx
}

// ServiceProvider represents a service provider interface
type ServiceProvider interface {
	Register(container *Container) error
}

// Module represents a module that can register multiple services
type Module struct {
	name     string
	provider ServiceProvider
}

// NewModule creates a new module
func NewModule(name string, provider ServiceProvider) *Module {
	return &Module{name: name, provider: provider}
}

// Register registers the module with a container
func (m *Module) Register(container *Container) error {
	return m.provider.Register(container)
}

// Name returns the module name
func (m *Module) Name() string {
	return m.name
}

// EngineModule provides the configuration, logger, and engine factory
// every example program needs.
type EngineModule struct{}

// Register registers core engine services
func (em *EngineModule) Register(container *Container) error {
	container.RegisterFactory("config", func(c *Container) (interface{}, error) {
		return config.DefaultConfig(), nil
	})

	container.RegisterFactory("logger", func(c *Container) (interface{}, error) {
		var cfg *config.Config
		if err := c.GetTyped("config", &cfg); err != nil {
			return nil, err
		}
		return glog.NewStructuredLogger(os.Stdout, logLevelFromString(cfg.Logging.Level)), nil
	})

	container.RegisterFactory("engine_factory", func(c *Container) (interface{}, error) {
		return &EngineFactory{container: c}, nil
	})

	return nil
}

func logLevelFromString(level string) glog.LEVEL {
	switch level {
	case "debug":
		return glog.DEBUG
	case "warn":
		return glog.WARN
	case "error":
		return glog.ERROR
	default:
		return glog.INFO
	}
}

// EngineFactory creates engine.Engine instances from container-resolved
// configuration.
type EngineFactory struct {
	container *Container
}

// Create returns an unloaded engine.
func (ef *EngineFactory) Create() *engine.Engine {
	return engine.NewEngine()
}

// CreateWithConfig creates an engine and loads the keyboard named by
// cfg.Engine.DefaultKeyboardPath.
func (ef *EngineFactory) CreateWithConfig(cfg *config.Config) (*engine.Engine, error) {
	e := engine.NewEngine()
	if cfg.Engine.DefaultKeyboardPath == "" {
		return e, nil
	}
	data, err := os.ReadFile(cfg.Engine.DefaultKeyboardPath)
	if err != nil {
		return nil, core.WrapErrorWithContextf(err, "read keyboard %q", cfg.Engine.DefaultKeyboardPath)
	}
	if err := e.LoadKeyboard(data); err != nil {
		return nil, core.WrapErrorWithContextf(err, "load keyboard %q", cfg.Engine.DefaultKeyboardPath)
	}
	return e, nil
}

// PluginModule provides the plugin manager service
type PluginModule struct{}

// Register registers plugin services
func (pm *PluginModule) Register(container *Container) error {
	container.RegisterFactory("plugin_manager", func(c *Container) (interface{}, error) {
		return plugin.NewPluginManager(), nil
	})
	return nil
}

// ManagementModule provides the admin console service
type ManagementModule struct{}

// Register registers management services
func (mm *ManagementModule) Register(container *Container) error {
	container.RegisterFactory("management_console", func(c *Container) (interface{}, error) {
		var cfg *config.Config
		if err := c.GetTyped("config", &cfg); err != nil {
			return nil, err
		}
		var logger *glog.StructuredLogger
		if err := c.GetTyped("logger", &logger); err != nil {
			return nil, err
		}
		return management.NewConsole(&management.ConsoleConfig{
			ListenAddr: cfg.Management.ListenAddr,
		}, logger), nil
	})
	return nil
}

// MobileModule provides the mobile engine factory service
type MobileModule struct{}

// Register registers mobile services
func (mm *MobileModule) Register(container *Container) error {
	container.RegisterFactory("mobile_engine_factory", func(c *Container) (interface{}, error) {
		return &MobileEngineFactory{container: c}, nil
	})
	return nil
}

// MobileEngineFactory creates mobile.MobileEngine instances
type MobileEngineFactory struct {
	container *Container
}

// Create returns an unloaded mobile engine facade.
func (mf *MobileEngineFactory) Create() *mobile.MobileEngine {
	return mobile.NewMobileEngine()
}

// Application represents a host program's services wired through a
// Container.
type Application struct {
	container *Container
	modules   []*Module
}

// NewApplication creates a new application with the default module set.
func NewApplication() *Application {
	container := NewContainer()

	app := &Application{
		container: container,
		modules:   make([]*Module, 0),
	}

	app.RegisterModule(NewModule("engine", &EngineModule{}))
	app.RegisterModule(NewModule("plugin", &PluginModule{}))
	app.RegisterModule(NewModule("management", &ManagementModule{}))
	app.RegisterModule(NewModule("mobile", &MobileModule{}))

	return app
}

// RegisterModule registers a module with the application
func (app *Application) RegisterModule(module *Module) {
	app.modules = append(app.modules, module)
}

// Initialize initializes the application and all modules
func (app *Application) Initialize() error {
	for _, module := range app.modules {
		if err := module.Register(app.container); err != nil {
			return fmt.Errorf("failed to register module '%s': %w", module.Name(), err)
		}
	}
	return nil
}

// Get retrieves a service from the application
func (app *Application) Get(name string) (interface{}, error) {
	return app.container.Get(name)
}

// GetTyped retrieves a service with type assertion
func (app *Application) GetTyped(name string, target interface{}) error {
	return app.container.GetTyped(name, target)
}

// Container returns the underlying container
func (app *Application) Container() *Container {
	return app.container
}

// Close closes the application
func (app *Application) Close() error {
	return app.container.Close()
}

// Example usage:
//
// func main() {
//     app := di.NewApplication()
//     if err := app.Initialize(); err != nil {
//         log.Fatal(err)
//     }
//     defer app.Close()
//
//     var engineFactory *di.EngineFactory
//     if err := app.GetTyped("engine_factory", &engineFactory); err != nil {
//         log.Fatal(err)
//     }
//
//     var cfg *config.Config
//     app.GetTyped("config", &cfg)
//     cfg.Engine.DefaultKeyboardPath = "myanmar3.km2"
//
//     eng, err := engineFactory.CreateWithConfig(cfg)
//     if err != nil {
//         log.Fatal(err)
//     }
// }
