// Package s3 stores column files and manifests as objects in Amazon S3.
//
// Three stores cover the common deployments:
//
//   - Store targets standard buckets. Reads are ranged GETs, writes go
//     through checksummed multipart uploads.
//   - ExpressStore targets S3 Express One Zone directory buckets and adds
//     PutIfNotExists on top of their conditional writes.
//   - DDBCommitStore wraps either store with a DynamoDB commit log so
//     concurrent writers can race on the manifest pointer safely.
//
// # Usage
//
//	cfg, err := config.LoadDefaultConfig(ctx)
//	if err != nil {
//	    return err
//	}
//	client := awss3.NewFromConfig(cfg)
//
//	store := s3.NewStore(client, "my-bucket", func(o *s3.StoreOptions) {
//	    o.Prefix = "datasets/events"
//	})
//
// The store satisfies blobstore.Store, so it plugs into the manifest
// store and dataset reader unchanged.
package s3
