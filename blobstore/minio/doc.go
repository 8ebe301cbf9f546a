// Package minio stores column files and manifests in MinIO or any other
// S3-compatible object store (Ceph, Garage, SeaweedFS).
//
// It uses the native MinIO client rather than the AWS SDK, which keeps
// self-hosted and air-gapped deployments free of AWS dependencies.
//
// # Usage
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	if err != nil {
//	    return err
//	}
//
//	store := minioblob.NewStore(client, "my-bucket", func(o *minioblob.StoreOptions) {
//	    o.Prefix = "datasets/events"
//	})
//
// The store satisfies blobstore.Store, so it plugs into the manifest
// store and dataset reader unchanged.
package minio
