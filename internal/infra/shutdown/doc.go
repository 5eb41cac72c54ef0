// Package shutdown provides graceful shutdown for kvdis.
//
// Handler waits for SIGINT, SIGTERM or an explicit Trigger and then runs
// the registered hooks in reverse order of registration under a shared
// deadline. kvdis-server registers, in startup order: the snapshot engine
// (drain pending saves, optional final save), the line server and the
// HTTP side-car, so that listeners stop before the last snapshot is taken.
//
// Usage:
//
//	h := shutdown.NewHandler(30*time.Second, logger)
//	h.OnShutdown("engine", engine.Shutdown)
//	h.OnShutdown("lineserver", srv.Shutdown)
//	err := h.Wait()
package shutdown
