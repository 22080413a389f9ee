package state

import (
	"fmt"

	server_errors "modelmove/server/errors"
	"modelmove/utils"
)

//Syncer for the configured state backend
func NewSyncer(config *utils.AppConfig) (Syncer, error) {
	switch config.StateBackend {
	case utils.StateBackendFile:
		return NewFileSyncer(config.StateFile), nil
	case utils.StateBackendRedis:
		syncer, err := NewRedisSyncerFromUrl(config.RedisUrl)
		if err != nil {
			return nil, err
		}
		return syncer, nil
	default:
		return nil, server_errors.NewFatalError(
			ErrStateStorage,
			fmt.Sprintf("unknown state backend '%s'", config.StateBackend),
			nil,
		)
	}
}
