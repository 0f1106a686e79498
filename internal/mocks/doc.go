// Package mocks provides hand-written test doubles for the service
// interfaces the HTTP layer depends on.
//
// Each mock has one function field per interface method. A nil field falls
// back to the mock's default return values, and every call is recorded so
// tests can assert on what the handler asked for:
//
//	svc := &mocks.MockProgressService{Err: errors.New("db down")}
//	handler := api.NewTopicHandler(study, svc, logger)
//	// ...
//	assert.Equal(t, 1, svc.Calls())
package mocks
