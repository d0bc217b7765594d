package telemetry

import (
	"context"
	"sync"
)

var (
	testEnvLock           sync.Mutex
	setupTestEnvironments = map[string]bool{}
)

// sets up telemetry in a testing environment, ensuring that it isn't
// set up more than once per service name
func SetupForTesting(serviceName string) func() {
	testEnvLock.Lock()
	defer testEnvLock.Unlock()

	if setupTestEnvironments[serviceName] {
		return func() {}
	}
	setupTestEnvironments[serviceName] = true

	InitSlog(true)
	err := SetupFromEnv(context.Background(), serviceName)
	if err != nil {
		panic(err)
	}

	return func() {
		err := Shutdown(context.Background())
		if err != nil {
			panic(err)
		}
	}
}
