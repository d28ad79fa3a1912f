// Package csw implements a harvester for OGC Catalogue Service for the Web
// (CSW 2.0.2) registries that serve ISO 19139 records.
//
// # Architecture
//
// The connector follows the driven port pattern defined in [driven.Harvester].
// It comprises the following components:
//
//   - Connector: walks the registry page by page and streams raw records
//   - Client: posts GetRecords requests and parses result pages
//   - RateLimiter: proactive throttling plus Retry-After handling
//   - Config: harvest parameters derived from [domain.HarvestSettings]
//
// # Paging
//
// Each GetRecords response carries csw:SearchResults with
// numberOfRecordsMatched and nextRecord. The connector follows the server's
// nextRecord until it passes the matched total or the server answers with
// nextRecord="0". A nextRecord that does not move forward is treated as a
// malformed response so a misbehaving server cannot loop the harvest.
//
// # Error Handling
//
//   - Transport failures, timeouts and non-2xx statuses are transient and
//     retried with exponential backoff up to the configured attempt count.
//   - Bodies that are not a result page are retried once, then fatal.
//   - An empty page where the server claims more records is retried once,
//     then fatal.
//
// Every fatal page failure is reported as a *FetchError, which unwraps to
// [domain.ErrTransientFetch] or [domain.ErrMalformedResponse].
//
// # Example Usage
//
//	cfg, _ := csw.ConfigFromSettings(settings.Harvest)
//	connector := csw.New(cfg)
//
//	docs, errs := connector.Harvest(ctx)
//	for doc := range docs {
//	    // Stage document
//	}
//	if err := <-errs; err != nil {
//	    return err
//	}
package csw
