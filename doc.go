// Package dbcopilot answers natural-language questions about a relational
// database.
//
// A Copilot asks a language model to write SQL for the question, runs the
// SQL, and asks the model again to summarize the rows:
//
//	prompts, err := dbcopilot.LoadPrompts(assets.NewEmbeddedLoader(), "", "")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	c, err := dbcopilot.NewCopilot(model, db, prompts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	answer, err := c.Ask(ctx, dbcopilot.Request{Question: "Which pair traded most today?"})
//
// # Business reports
//
// With Request.BusinessReport the answer stage uses the report prompt and
// the model's markdown is rendered to PDF by a Reporter. ReportBuilder is
// the headless-Chrome implementation:
//
//  1. Markdown to HTML via Goldmark (tables stay as pipe text)
//  2. Pipe tables extracted from the source markdown
//  3. Layout: one text block per HTML line, then every table in the fixed
//     report style (or interleaved with WithInterleave)
//  4. PDF rendering via headless Chrome (go-rod)
//
// ReportBuilderPool bounds the number of browsers when many requests render
// at once.
//
// # Errors
//
// Failures are classified with errors.Is against ErrConnection, ErrQuery,
// ErrUpstreamModel, ErrRender and ErrEmptyQuestion.
package dbcopilot
