package description

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	server_errors "modelmove/server/errors"
	_migrations "modelmove/server/migrations"
	"modelmove/server/migrations/operations"
)

//Persisted form of a migration: the ordered list of declarative steps for one app.
type MigrationDescription struct {
	Id         string            `json:"id" yaml:"id"`
	AppLabel   string            `json:"appLabel" yaml:"appLabel"`
	DependsOn  []string          `json:"dependsOn,omitempty" yaml:"dependsOn,omitempty"`
	Neutered   bool              `json:"neutered,omitempty" yaml:"neutered,omitempty"`
	Operations []operations.Spec `json:"operations" yaml:"operations"`
}

func (md *MigrationDescription) Marshal() ([]byte, error) {
	return json.Marshal(md)
}

func (md *MigrationDescription) Unmarshal(inputReader io.Reader) (*MigrationDescription, error) {
	if e := json.NewDecoder(inputReader).Decode(md); e != nil {
		return nil, NewMigrationUnmarshallingError(e.Error())
	}
	return md, md.Validate()
}

func (md *MigrationDescription) UnmarshalYaml(inputReader io.Reader) (*MigrationDescription, error) {
	if e := yaml.NewDecoder(inputReader).Decode(md); e != nil {
		return nil, NewMigrationUnmarshallingError(e.Error())
	}
	return md, md.Validate()
}

func (md *MigrationDescription) Validate() error {
	if md.Id == "" {
		return server_errors.NewValidationError(_migrations.MigrationErrorInvalidDescription, "migration has no id", nil)
	}
	if md.AppLabel == "" {
		return server_errors.NewValidationError(_migrations.MigrationErrorInvalidDescription, fmt.Sprintf("migration '%s' has no appLabel", md.Id), nil)
	}
	for i, operation := range md.Operations {
		if operation.Type == "" {
			return server_errors.NewValidationError(
				_migrations.MigrationErrorInvalidDescription,
				fmt.Sprintf("operation #%d of migration '%s' has no type", i, md.Id),
				nil,
			)
		}
	}
	return nil
}

//Reads a migration file; .yaml and .yml files are decoded as YAML, anything else as JSON.
func ReadFile(path string) (*MigrationDescription, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open migration file '%s'", path)
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return new(MigrationDescription).UnmarshalYaml(file)
	default:
		return new(MigrationDescription).Unmarshal(file)
	}
}
