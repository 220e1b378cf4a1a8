// Package engine assembles a ready-to-use resolver from configuration.
//
// [New] loads the mapping fragments found below the configured prefixes,
// builds the system and bisection repositories, seeds the blacklist and
// wires everything into a [resolver.Chain] behind a [resolver.Caching]
// layer. The CLI and the HTTP service both go through it.
//
//	cfg, err := config.Resolve("")
//	if err != nil {
//	    return err
//	}
//	e, err := engine.New(ctx, cfg, engine.Options{Logger: logger})
//	if err != nil {
//	    return err
//	}
//	defer e.Close()
//
//	res, err := e.Resolve(ctx, resolver.NewRequest(artifact.MustParse("junit:junit:4.12")))
package engine
