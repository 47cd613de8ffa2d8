package s3gateway_test

import (
	"errors"
	"fmt"

	"github.com/sagarc03/s3gateway"
)

func ExampleDeriveObjectKey() {
	key, err := s3gateway.DeriveObjectKey(s3gateway.IdentifierSet{
		ClientID:      "Acme Co",
		ContainerType: "form",
		ContainerID:   "INV-01",
		FileName:      "invoice 1.pdf",
	})
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(key)
	// Output: acme_co/client/form/inv-01/invoice_1.pdf
}

func ExampleDeriveScopePrefix() {
	ids := s3gateway.IdentifierSet{
		ClientID:      "acme",
		ContainerType: "attachment",
		TableName:     "C_Order",
		RecordID:      "1000001",
		UserID:        "100",
	}

	private, _ := s3gateway.DeriveScopePrefix(ids, true)
	shared, _ := s3gateway.DeriveScopePrefix(ids, false)
	fmt.Println(private)
	fmt.Println(shared)
	// Output:
	// acme/user/100/attachment/c_order/1000001
	// acme/client/attachment/c_order/1000001
}

func ExampleValidationError() {
	_, err := s3gateway.DeriveObjectKey(s3gateway.IdentifierSet{
		ClientID:      "acme",
		ContainerType: "form",
		FileName:      "a.pdf",
	})

	var verr *s3gateway.ValidationError
	if errors.As(err, &verr) {
		fmt.Println(verr.Field, "-", verr.Message)
	}
	// Output: container_id - Container ID is Mandatory
}
