// Package sdk provides an embedded Go client for the assessd assessment
// search engine, backed by Redis with the search module.
//
// The embedded client wires the storage and search layers in-process and
// trusts the host application, so the tenant scope is fixed at construction
// instead of resolved from a bearer token:
//
//	client, _ := sdk.New(ctx,
//	    sdk.WithRedis("localhost:6379", ""),
//	    sdk.WithCountry("US"),
//	    sdk.WithEmbedder(myEmbedder),
//	)
//	defer client.Close()
//
//	a, _ := client.Submit(ctx, sdk.SubmitInput{
//	    PatientID:    "p-100",
//	    RiskScore:    "42%",
//	    RiskCategory: "High Risk",
//	})
//	_, _ = client.Backfill(ctx, 0)
//	res, _ := client.Search(ctx, "high risk score > 20 after January 1, 2024", "all")
package sdk
