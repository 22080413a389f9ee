package neutered

import (
	"fmt"
	"sort"
	"strings"

	"modelmove/logger"
	"modelmove/server/errors"
	"modelmove/server/migrations"
	"modelmove/server/migrations/operations"
	"modelmove/utils"
)

//Neutered kinds by original kind name. Built once, read-only afterwards.
type Registry struct {
	kinds map[string]*operations.Kind
	names []string
}

//Neuters every kind discovered in catalog, failing with a configuration mismatch unless the
//discovered names are exactly allowList.
func NewRegistry(catalog []*operations.Kind, exclude []string, allowList []string) (*Registry, error) {
	discovered := Discover(catalog, exclude)
	names := make([]string, 0, len(discovered))
	for _, kind := range discovered {
		names = append(names, kind.Name)
	}
	missing := utils.Difference(allowList, names)
	unexpected := utils.Difference(names, allowList)
	if len(missing) > 0 || len(unexpected) > 0 {
		return nil, errors.NewFatalError(
			migrations.MigrationErrorConfigurationMismatch,
			fmt.Sprintf(
				"neuterable operations do not match the allow-list: missing [%s], unexpected [%s]",
				strings.Join(missing, ", "), strings.Join(unexpected, ", "),
			),
			map[string][]string{"missing": missing, "unexpected": unexpected},
		)
	}

	registry := &Registry{kinds: make(map[string]*operations.Kind, len(discovered))}
	for _, kind := range discovered {
		registry.kinds[kind.Name] = Neuter(kind)
		registry.names = append(registry.names, kind.Name)
	}
	sort.Strings(registry.names)
	return registry, nil
}

func (r *Registry) Lookup(name string) (*operations.Kind, bool) {
	kind, ok := r.kinds[name]
	return kind, ok
}

//Neutered kinds sorted by name
func (r *Registry) Kinds() []*operations.Kind {
	kinds := make([]*operations.Kind, 0, len(r.names))
	for _, name := range r.names {
		kinds = append(kinds, r.kinds[name])
	}
	return kinds
}

//Neuters an already built operation.
func (r *Registry) Wrap(operation operations.Operation) (operations.Operation, error) {
	if _, ok := operation.(*Operation); ok {
		return operation, nil
	}
	kind, ok := r.kinds[operation.Kind().Name]
	if !ok || operation.Kind().Namespace != "" {
		return nil, migrations.NewInvalidArgumentError("operation '%s' can not be neutered", operation.Kind().QualifiedName())
	}
	return &Operation{Operation: operation, kind: kind}, nil
}

var registry = mustRegistry()

func mustRegistry() *Registry {
	registry, err := NewRegistry(operations.Catalog(), Excluded, AllowList)
	if err != nil {
		panic(err)
	}
	logger.Debug("Neutered %d operation kind(s)", len(registry.names))
	return registry
}

func DefaultRegistry() *Registry {
	return registry
}

func Lookup(name string) (*operations.Kind, bool) {
	return registry.Lookup(name)
}

func Kinds() []*operations.Kind {
	return registry.Kinds()
}

func Wrap(operation operations.Operation) (operations.Operation, error) {
	return registry.Wrap(operation)
}

//Like Wrap but panics, for use in Go-declared migrations.
func MustWrap(operation operations.Operation, err error) operations.Operation {
	if err != nil {
		panic(err)
	}
	neutered, err := Wrap(operation)
	if err != nil {
		panic(err)
	}
	return neutered
}
