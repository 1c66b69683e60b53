// Package s3 stores checkpoints in Amazon S3, optionally committing offsets
// through DynamoDB conditional writes so concurrent subscribers never move
// a checkpoint backwards.
//
// Create the DynamoDB table with:
//
//	aws dynamodb create-table \
//	  --table-name ddbgo-checkpoints \
//	  --attribute-definitions AttributeName=topic,AttributeType=S \
//	  --key-schema AttributeName=topic,KeyType=HASH \
//	  --billing-mode PAY_PER_REQUEST
package s3
