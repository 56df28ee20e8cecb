// Package dandelion is a client for the Dandelion entity extraction API
// (datatxt/nex/v1).
//
// A Client issues exactly one HTTP request per Extract call. It does not
// retry, cache or batch. The input text is NFC-normalized and trimmed before
// it is sent; the response annotations are decoded leniently into
// annotation.Annotation values, ready for annotation.NormalizeAll.
//
//	client, err := dandelion.NewClient(token, dandelion.WithTimeout(15*time.Second))
//	if err != nil {
//	    return err
//	}
//	resp, err := client.Extract(ctx, dandelion.Request{Text: text})
//	var apiErr *dandelion.APIError
//	if errors.As(err, &apiErr) {
//	    // non-2xx answer from the API
//	}
package dandelion
