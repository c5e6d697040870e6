package services

import (
	"errors"
	"fmt"
	"sync"
)

// Service is anything the registry can hold.
type Service interface {
	Name() string
}

// Shutdowner is implemented by services that must flush state before the process exits.
type Shutdowner interface {
	Shutdown() error
}

// Registry holds the services of one Aegis process by name.
type Registry struct {
	mu       sync.RWMutex
	services map[string]Service
	order    []string
}

// NewRegistry creates a new service registry with an empty service map.
func NewRegistry() *Registry {
	return &Registry{
		services: make(map[string]Service),
	}
}

// RegisterService adds a service to the registry, returning an error if already registered.
func (r *Registry) RegisterService(service Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := service.Name()
	if _, exists := r.services[name]; exists {
		return fmt.Errorf("service %s already registered", name)
	}

	r.services[name] = service
	r.order = append(r.order, name)
	return nil
}

// GetService retrieves a service by name, returning an error if not found.
func (r *Registry) GetService(name string) (Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	service, exists := r.services[name]
	if !exists {
		return nil, fmt.Errorf("service %s not found", name)
	}

	return service, nil
}

// HasService reports whether a service with the given name is registered.
func (r *Registry) HasService(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.services[name]
	return exists
}

// Lookup retrieves a service by name and asserts its concrete type.
func Lookup[T Service](r *Registry, name string) (T, error) {
	var zero T
	service, err := r.GetService(name)
	if err != nil {
		return zero, err
	}
	typed, ok := service.(T)
	if !ok {
		return zero, fmt.Errorf("service %s has type %T, want %T", name, service, zero)
	}
	return typed, nil
}

// ShutdownAll shuts services down in reverse registration order. Every service is
// given the chance to shut down; failures are joined.
func (r *Registry) ShutdownAll() error {
	r.mu.RLock()
	order := make([]string, len(r.order))
	copy(order, r.order)
	r.mu.RUnlock()

	var errs []error
	for i := len(order) - 1; i >= 0; i-- {
		service, err := r.GetService(order[i])
		if err != nil {
			continue
		}
		if s, ok := service.(Shutdowner); ok {
			if err := s.Shutdown(); err != nil {
				errs = append(errs, fmt.Errorf("failed to shut down service %s: %w", order[i], err))
			}
		}
	}
	return errors.Join(errs...)
}

// Names returns the registered service names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
