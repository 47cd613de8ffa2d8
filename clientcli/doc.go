// Package clientcli provides a client library for the S3 gateway HTTP API.
//
// It covers presigning, proxied uploads, downloads through a signed URL,
// deletes and scoped listings. Every call carries an identifier set; tenant
// identifiers left blank are filled from the resolved Config. Profiles in a
// YAML file manage connections to several gateways.
//
// # Basic Usage
//
// Create a client and upload a file:
//
//	cfg := &clientcli.Config{
//		Endpoint: "http://localhost:7878",
//		ClientID: "acme",
//	}
//
//	client, err := clientcli.New(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	results, err := client.Upload(ctx, clientcli.UploadOptions{
//		LocalPath: "./invoice.pdf",
//		Identifiers: clientcli.Identifiers{
//			ContainerType: "form",
//			ContainerID:   "inv-01",
//		},
//	})
//
// # Profile Configuration
//
//	configFile, err := clientcli.LoadConfigFile(clientcli.DefaultConfigPath())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	profile, err := configFile.Lookup("production")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	client, err := clientcli.New(profile.Config())
//
// # Output Formatting
//
//	formatter := clientcli.NewFormatter(jsonOutput, quiet)
//	formatter.FormatUpload(os.Stdout, results)
package clientcli
