// Package s3gateway provides a multi-tenant access gateway in front of an
// S3-compatible object store.
//
// Clients never hold storage credentials. They send a set of tenancy and
// ownership identifiers (client, user, role, container, table, record, column,
// file name) and the gateway turns them into a canonical, access-scoped object
// key before asking the store to sign, list or delete.
//
// # Key Components
//
//   - IdentifierSet: the raw identifiers of one request
//   - KeyPolicy: validates an IdentifierSet and derives object keys and list prefixes
//   - Service: binds one request to one derived key and one storage call
//   - ObjectStore: the storage collaborator (see the s3store package)
//
// # Key Layout
//
// Object keys are lower-case and slash separated:
//
//	{client}/{scope}/{container_type}[/{container_id}][/{table}/{record}][/{column}]/{file}
//
// where {scope} is user/{user_id}, role/{role_id} or client. Every segment is
// sanitized, so identifiers can never inject a delimiter or a relative path
// element.
//
// # Example Usage
//
//	key, err := s3gateway.DeriveObjectKey(s3gateway.IdentifierSet{
//	    ClientID:      "Acme Co",
//	    ContainerType: "form",
//	    ContainerID:   "INV-01",
//	    FileName:      "invoice 1.pdf",
//	})
//	// key == "acme_co/client/form/inv-01/invoice_1.pdf"
//
//	service, err := s3gateway.NewService(store)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	obj, err := service.Presign(ctx, ids, s3gateway.MethodGet, 0)
//
// See the http package for the REST API and the s3store package for the
// aws-sdk-go-v2 backed store.
package s3gateway
