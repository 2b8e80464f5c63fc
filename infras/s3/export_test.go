package s3

var ObjectKeyFromURL = objectKeyFromURL
