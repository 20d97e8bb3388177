// Package searchd provides an embedded Go client for the searchd hybrid
// product search engine backed by Redis with the search module.
//
// The client wires the full ranking pipeline in-process: lexical scoring,
// vector retrieval, score fusion and conversation context tracking. It talks
// to Redis directly, so it needs the database address and (for semantic
// search and ingestion) an embedding provider.
//
//	client, _ := searchd.New(ctx, "tenant-a",
//	    searchd.WithRedis("localhost:6379", ""),
//	    searchd.WithEmbedder(myEmbedder),
//	)
//	defer client.Close()
//
//	client.Products().Put(ctx, searchd.Product{
//	    ID: "sku-1", Name: "Red Dress", Category: "clothing", Price: 59.90,
//	})
//	resp, _ := client.Search(ctx, searchd.SearchQuery{Query: "red dress"})
//
// Follow-up queries ("show me similar") resolve against the conversation
// context when the same SessionID is carried across calls.
package searchd
