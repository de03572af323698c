// Package clientsdk is a typed Go client for the clientdesk REST API.
//
// The CLI, the terminal UI and the end-to-end tests all talk to the server
// through this package, so the wire types defined here are also the ones the
// HTTP handlers encode.
//
// Basic usage:
//
//	c := clientsdk.NewSDKClient("http://localhost:8080")
//
//	created, err := c.CreateClient(ctx, clientsdk.CreateClientRequest{
//		Name:  "Ada Lovelace",
//		Email: "ada@example.com",
//	})
//	if err != nil {
//		var apiErr *clientsdk.APIError
//		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadRequest {
//			for _, fe := range apiErr.Errors {
//				fmt.Println(fe.Field, fe.Message)
//			}
//		}
//		return err
//	}
//
//	clients, err := c.ListClients(ctx, "ada")
package clientsdk
