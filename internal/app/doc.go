// Package app wires the pipeline components together and manages the
// lifecycle of the pipeline service.
//
// # Initialization Flow
//
//	1. Initialize logging from the loaded configuration
//	2. Create the project directory layout
//	3. Initialize telemetry (tracing and metrics)
//	4. Open the run history database when enabled
//	5. Build the pipeline manager with the regeneration collaborator
//	6. Set up the HTTP router and server
//
// # Usage
//
//	cfg, _ := config.Load("")
//	application, err := app.NewApplication(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	return application.Run()
package app
