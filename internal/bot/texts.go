package bot

// Тексты интерфейса. Разметка HTML.
const (
	menuImageToURL = "🖼️ IMAGE TO URL"
	webAppButton   = "🌐 OPEN WEB APP"
	joinedButton   = "✅ JOINED"

	gateCaption  = "<i>📌 নিচে দেওয়া সবগুলো চ্যানেলে জয়েন করে ( ✅ Joined ) বাটনে চাপ দিন ।</i>"
	gateFallback = "📌 নিচে দেওয়া সবগুলো চ্যানেলে জয়েন করে ( ✅ Joined ) বাটনে চাপ দিন ।"
	mainMenuText = "( Image To Url ) ব্যবহার হবে ছবি থেকে Url বাহির করার জন্য :"

	instructionsCaption = "📤 <b>HOW TO GET IMAGE URL:</b>\n\n" +
		"1. Tap the 📎 clip icon\n" +
		"2. Select <b>Photo</b> (not document)\n" +
		"3. Choose your image\n\n" +
		"⬇️ <b>SEND YOUR IMAGE NOW</b> ⬇️"
	instructionsFallback = "📤 <b>( Image Url ) এর জন্য ছবি পাঠান:</b>\n\n" +
		"1. <b>📎 ক্লিপ আইকন এর উপর চাপ দিন</b> \n" +
		"2. <b>( ফটো ) সিলেক্ট করুন</b>\n" +
		"3. <b>ফটো সেন্ড করুন</b>\n\n" +
		"📌 <i>আপনি চাইলে একাধিক ছবি একসাথে পাঠাতে পারেন ।</i>"

	relayProcessing = "⏳ <b>PROCESSING YOUR IMAGE...</b>"
	relayComplete   = "✅ <b>UPLOAD COMPLETE!</b>"
	relayFailed     = "❌ <b>ERROR PROCESSING IMAGE</b>"
	relayCaption    = "🔗 This Is Your Image Url\n\n<code>%s</code>\n\n<b>( উপরের লিংক এর উপর একটা ক্লিক করুন আপনার Image Url কপি হয়ে যাবে )</b>"

	mustJoinAlert  = "❌ YOU MUST JOIN ALL CHANNELS FIRST!"
	checkFailedFmt = "⚠️ Channel check failed for %s: %v"

	notAdmin         = "You Are Not An Admin ❌"
	notAdminStats    = "You Are Not Admin ❌"
	adminPanelTitle  = "👑 Admin Panel"
	broadcastPrompt  = "Send the %s you want to broadcast:"
	broadcastSentFmt = "✅ Broadcast sent to %d users"
	errorFmt         = "❌ Error: %s"
	totalUsersFmt    = "📊 Total Users: %d"
	exportCaptionFmt = "📁 Registered users: %d"
)

// Callback-данные кнопок.
const (
	cbCheckChannels = "check_channels"
	cbBroadcastPfx  = "broadcast_"
	cbUserStats     = "user_stats"
	cbExportUsers   = "export_users"
)
