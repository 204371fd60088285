// Command shelfscan identifies physical media from shelf photographs and
// enriches each identified title with catalog metadata.
package main
